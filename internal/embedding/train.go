package embedding

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

type sample struct {
	user, recipe int
	rating       float64
}

// Train fits a new model to interactions. The same config and input always
// produce the same weights.
func Train(ctx context.Context, cfg Config, interactions []pantry.Interaction) (*Model, error) {
	cfg = cfg.withDefaults()
	if len(interactions) == 0 {
		return nil, ErrNoInteractions
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Model{
		ID:          uuid.NewString(),
		Config:      cfg,
		UserIndex:   make(map[int]int),
		RecipeIndex: make(map[int]int),
	}

	samples := make([]sample, 0, len(interactions))
	for _, in := range interactions {
		if _, ok := m.UserIndex[in.UserID]; !ok {
			m.UserIndex[in.UserID] = len(m.UserIndex)
		}
		if _, ok := m.RecipeIndex[in.RecipeID]; !ok {
			m.RecipeIndex[in.RecipeID] = len(m.RecipeIndex)
		}
		samples = append(samples, sample{
			user:   m.UserIndex[in.UserID],
			recipe: m.RecipeIndex[in.RecipeID],
			rating: math.Min(1, math.Max(0, in.Rating)),
		})
	}

	//nolint:gosec // math/rand is fine for model initialization
	rng := rand.New(rand.NewSource(cfg.Seed))
	m.init(rng, len(m.UserIndex), len(m.RecipeIndex))

	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	nVal := int(math.Round(float64(len(samples)) * cfg.ValidationSplit))
	if nVal >= len(samples) {
		nVal = len(samples) - 1
	}
	validation, train := samples[:nVal], samples[nVal:]

	var g gradients
	g.init(cfg)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
		for _, s := range train {
			m.step(s, cfg.LearningRate, &g)
		}
	}

	m.TrainSize = len(train)
	m.ValidationSize = len(validation)
	m.TrainLoss = m.sampleLoss(train)
	m.ValidationLoss = m.sampleLoss(validation)
	m.TrainedAt = time.Now()
	return m, nil
}

func (m *Model) init(rng *rand.Rand, numUsers, numRecipes int) {
	dim, hidden := m.Config.Dim, m.Config.Hidden

	m.UserEmbeddings = randomMatrix(rng, numUsers, dim, 0.1)
	m.RecipeEmbeddings = randomMatrix(rng, numRecipes, dim, 0.1)

	// Glorot-uniform limits keep early activations in sigmoid's linear range.
	m.W1 = randomMatrix(rng, hidden, 2*dim, math.Sqrt(6/float64(2*dim+hidden)))
	m.B1 = make([]float64, hidden)
	m.W2 = randomMatrix(rng, 1, hidden, math.Sqrt(6/float64(hidden+1)))[0]
	m.B2 = 0
}

func randomMatrix(rng *rand.Rand, rows, cols int, limit float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = (rng.Float64()*2 - 1) * limit
		}
	}
	return out
}

// gradients holds scratch buffers reused across SGD steps.
type gradients struct {
	act activations
	dh  []float64
	dx  []float64
}

func (g *gradients) init(cfg Config) {
	g.dh = make([]float64, cfg.Hidden)
	g.dx = make([]float64, 2*cfg.Dim)
}

// step applies one SGD update for a single sample.
func (m *Model) step(s sample, lr float64, g *gradients) {
	a := &g.act
	m.forward(s.user, s.recipe, a)

	// d(BCE)/dz for a logistic output.
	dz := a.out - s.rating

	for j := range g.dh {
		if a.pre[j] > 0 {
			g.dh[j] = dz * m.W2[j]
		} else {
			g.dh[j] = 0
		}
	}

	for k := range g.dx {
		g.dx[k] = 0
	}
	for j, dhj := range g.dh {
		if dhj == 0 {
			continue
		}
		row := m.W1[j]
		for k, xv := range a.x {
			g.dx[k] += row[k] * dhj
			row[k] -= lr * dhj * xv
		}
		m.B1[j] -= lr * dhj
	}

	for j, hj := range a.h {
		m.W2[j] -= lr * dz * hj
	}
	m.B2 -= lr * dz

	dim := len(m.UserEmbeddings[s.user])
	u, r := m.UserEmbeddings[s.user], m.RecipeEmbeddings[s.recipe]
	for k := 0; k < dim; k++ {
		u[k] -= lr * g.dx[k]
		r[k] -= lr * g.dx[dim+k]
	}
}

func (m *Model) sampleLoss(samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var a activations
	var total float64
	for _, s := range samples {
		m.forward(s.user, s.recipe, &a)
		total += bce(a.out, s.rating)
	}
	return total / float64(len(samples))
}
