package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RECOMMENDER_SERVER_PORT.
const EnvPrefix = "RECOMMENDER"

var validate = validator.New()

// Load reads configuration from defaults, an optional config file, and the
// environment (in increasing priority). When configFile is empty, config.yaml
// is searched for in ./configs and the working directory.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Content.SimilarityWeight+c.Content.PriorityWeight == 0 {
		return errors.New("invalid config: content weights must not both be zero")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.http_timeout", "10s")
	v.SetDefault("data.inventory_path", "data/inventory.csv")
	v.SetDefault("data.recipes_path", "data/recipes.csv")
	v.SetDefault("data.users_path", "data/users.csv")
	v.SetDefault("data.interactions_path", "data/interactions.csv")
	v.SetDefault("data.model_path", "data/model.gob.gz")
	v.SetDefault("data.default_expiration_days", 7)
	v.SetDefault("data.expiring_threshold_days", 14)

	v.SetDefault("content.similarity_weight", 0.7)
	v.SetDefault("content.priority_weight", 0.3)
	v.SetDefault("content.normalization", "mean")

	v.SetDefault("embedding.dim", 16)
	v.SetDefault("embedding.hidden", 32)
	v.SetDefault("embedding.epochs", 200)
	v.SetDefault("embedding.learning_rate", 0.05)
	v.SetDefault("embedding.validation_split", 0.2)
	v.SetDefault("embedding.seed", 42)
	v.SetDefault("embedding.top_k", 4)
	v.SetDefault("embedding.default_user", 0)
	v.SetDefault("embedding.train_on_startup", true)
	v.SetDefault("embedding.refresh_interval", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
