package config

import "time"

// Config is the recommender's full runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Content   ContentConfig   `mapstructure:"content"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DataConfig points at the inventory and recipe sources and the model
// artifact. Users and interactions always live in CSV files.
type DataConfig struct {
	// Source is "csv" (local files) or "http" (woodpantry services).
	Source string `mapstructure:"source" validate:"oneof=csv http"`

	PantryURL     string        `mapstructure:"pantry_url" validate:"required_if=Source http,omitempty,url"`
	RecipeURL     string        `mapstructure:"recipe_url" validate:"required_if=Source http,omitempty,url"`
	DictionaryURL string        `mapstructure:"dictionary_url" validate:"required_if=Source http,omitempty,url"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout" validate:"gte=0"`

	InventoryPath    string `mapstructure:"inventory_path" validate:"required"`
	RecipesPath      string `mapstructure:"recipes_path" validate:"required"`
	UsersPath        string `mapstructure:"users_path" validate:"required"`
	InteractionsPath string `mapstructure:"interactions_path" validate:"required"`
	ModelPath        string `mapstructure:"model_path" validate:"required"`

	// DefaultExpirationDays is applied to inventory rows with a missing or
	// unparseable expiration date.
	DefaultExpirationDays int `mapstructure:"default_expiration_days" validate:"gte=0"`
	// ExpiringThresholdDays bounds which ingredients count as "expiring soon".
	ExpiringThresholdDays int `mapstructure:"expiring_threshold_days" validate:"gte=0"`
}

// ContentConfig tunes the ingredient-overlap recommender.
type ContentConfig struct {
	SimilarityWeight float64 `mapstructure:"similarity_weight" validate:"gte=0"`
	PriorityWeight   float64 `mapstructure:"priority_weight" validate:"gte=0"`
	// Normalization is "mean" (priority term scaled into [0,1]) or "raw".
	Normalization string `mapstructure:"normalization" validate:"oneof=mean raw"`
}

// EmbeddingConfig tunes the two-tower rating model and its refresh loop.
type EmbeddingConfig struct {
	Dim             int           `mapstructure:"dim" validate:"min=1"`
	Hidden          int           `mapstructure:"hidden" validate:"min=1"`
	Epochs          int           `mapstructure:"epochs" validate:"min=1"`
	LearningRate    float64       `mapstructure:"learning_rate" validate:"gt=0"`
	ValidationSplit float64       `mapstructure:"validation_split" validate:"gte=0,lt=1"`
	// Seed must be non-zero; the model treats zero as "use the default seed".
	Seed            int64         `mapstructure:"seed" validate:"ne=0"`
	TopK            int           `mapstructure:"top_k" validate:"min=1"`
	DefaultUser     int           `mapstructure:"default_user" validate:"gte=0"`
	TrainOnStartup  bool          `mapstructure:"train_on_startup"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}
