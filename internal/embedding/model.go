// Package embedding implements the two-tower rating model used by the
// collaborative recommender.
//
// A user embedding and a recipe embedding are concatenated and passed through
// a single ReLU hidden layer and a logistic output, producing a rating
// estimate in [0,1]. The model is trained with SGD on binary cross-entropy
// against synthetic interaction ratings.
//
// A trained *Model is never mutated, so it can be shared by concurrent
// readers without locking.
package embedding

import (
	"errors"
	"maps"
	"math"
	"time"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

var (
	ErrNoInteractions   = errors.New("no interactions to train on")
	ErrChecksumMismatch = errors.New("model checksum mismatch")
)

// Config holds the model's hyperparameters.
type Config struct {
	// Dim is the size of each user and recipe embedding.
	Dim int
	// Hidden is the width of the feed-forward layer.
	Hidden int
	// Epochs is the number of passes over the training split.
	Epochs int
	// LearningRate is the SGD step size.
	LearningRate float64
	// ValidationSplit is the fraction of interactions held out, in [0,1).
	ValidationSplit float64
	// Seed drives initialization, the split, and per-epoch shuffling. Zero
	// selects the default seed.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Dim:             16,
		Hidden:          32,
		Epochs:          200,
		LearningRate:    0.05,
		ValidationSplit: 0.2,
		Seed:            42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Dim <= 0 {
		c.Dim = d.Dim
	}
	if c.Hidden <= 0 {
		c.Hidden = d.Hidden
	}
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = d.ValidationSplit
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Model is a trained two-tower predictor. Fields are exported for gob.
type Model struct {
	ID        string
	TrainedAt time.Time
	Config    Config

	UserIndex   map[int]int
	RecipeIndex map[int]int
	// RecipeKeys records which recipe (pantry.RecipeKey) each trained ID
	// referred to. Set by the caller before the model is saved or served.
	RecipeKeys map[int]string

	UserEmbeddings   [][]float64
	RecipeEmbeddings [][]float64

	// W1 is Hidden x 2*Dim; W2 is the Hidden-wide output row.
	W1 [][]float64
	B1 []float64
	W2 []float64
	B2 float64

	TrainSize      int
	ValidationSize int
	TrainLoss      float64
	ValidationLoss float64
}

// HasUser reports whether the user was seen during training.
func (m *Model) HasUser(userID int) bool {
	_, ok := m.UserIndex[userID]
	return ok
}

func (m *Model) HasRecipe(recipeID int) bool {
	_, ok := m.RecipeIndex[recipeID]
	return ok
}

// Recognizes reports whether recipeID still names the recipe the model was
// trained on. Models without recorded keys only check the ID.
func (m *Model) Recognizes(recipeID int, key string) bool {
	if !m.HasRecipe(recipeID) {
		return false
	}
	if m.RecipeKeys == nil {
		return true
	}
	return m.RecipeKeys[recipeID] == key
}

// MatchesRecipes reports whether keys is exactly the recipe book the model
// was trained on. Models without recorded keys never match.
func (m *Model) MatchesRecipes(keys map[int]string) bool {
	return m.RecipeKeys != nil && maps.Equal(m.RecipeKeys, keys)
}

// Predict estimates the rating userID would give recipeID. ok is false when
// either id was not part of training.
func (m *Model) Predict(userID, recipeID int) (rating float64, ok bool) {
	ui, ok := m.UserIndex[userID]
	if !ok {
		return 0, false
	}
	ri, ok := m.RecipeIndex[recipeID]
	if !ok {
		return 0, false
	}
	var a activations
	m.forward(ui, ri, &a)
	return a.out, true
}

// Loss is the mean binary cross-entropy over interactions the model knows.
func (m *Model) Loss(interactions []pantry.Interaction) float64 {
	var total float64
	var n int
	var a activations
	for _, in := range interactions {
		ui, okU := m.UserIndex[in.UserID]
		ri, okR := m.RecipeIndex[in.RecipeID]
		if !okU || !okR {
			continue
		}
		m.forward(ui, ri, &a)
		total += bce(a.out, in.Rating)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// activations caches one forward pass for backpropagation.
type activations struct {
	x   []float64
	pre []float64
	h   []float64
	out float64
}

func (m *Model) forward(ui, ri int, a *activations) {
	dim := len(m.UserEmbeddings[ui])
	if cap(a.x) < 2*dim {
		a.x = make([]float64, 2*dim)
	}
	a.x = a.x[:2*dim]
	copy(a.x, m.UserEmbeddings[ui])
	copy(a.x[dim:], m.RecipeEmbeddings[ri])

	hidden := len(m.B1)
	if cap(a.pre) < hidden {
		a.pre = make([]float64, hidden)
		a.h = make([]float64, hidden)
	}
	a.pre, a.h = a.pre[:hidden], a.h[:hidden]

	z := m.B2
	for j := 0; j < hidden; j++ {
		s := m.B1[j]
		row := m.W1[j]
		for k, xv := range a.x {
			s += row[k] * xv
		}
		a.pre[j] = s
		a.h[j] = math.Max(0, s)
		z += m.W2[j] * a.h[j]
	}
	a.out = sigmoid(z)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

const eps = 1e-7

func bce(p, y float64) float64 {
	p = math.Min(math.Max(p, eps), 1-eps)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}
