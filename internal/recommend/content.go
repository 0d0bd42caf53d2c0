package recommend

import (
	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

// Normalization controls how the summed ingredient priorities enter the blend.
type Normalization string

const (
	// NormalizeMean divides the priority sum by 100 times the recipe's
	// ingredient count, putting it on the same [0,1] scale as similarity.
	NormalizeMean Normalization = "mean"
	// NormalizeRaw uses the un-scaled sum, which can exceed 100 and swamps
	// the similarity term.
	NormalizeRaw Normalization = "raw"
)

// ContentWeights is the linear blend applied to the two content signals.
type ContentWeights struct {
	Similarity    float64
	Priority      float64
	Normalization Normalization
}

func DefaultContentWeights() ContentWeights {
	return ContentWeights{Similarity: 0.7, Priority: 0.3, Normalization: NormalizeMean}
}

// Scored is a recipe with its final score and the signals behind it.
type Scored struct {
	Recipe       pantry.Recipe
	Score        float64
	Similarity   float64
	PriorityTerm float64
}

// ScoreContent scores every recipe against the inventory by cosine similarity
// of ingredient presence vectors, blended with the priority of the recipe's
// ingredients that are on hand. Results keep recipe order.
func ScoreContent(recipes []pantry.Recipe, inventory []pantry.InventoryItem, w ContentWeights) []Scored {
	vocab := pantry.NewVocabulary(recipes)
	invVec := vocab.Vector(pantry.Names(inventory))
	onHand := pantry.Index(inventory)

	out := make([]Scored, 0, len(recipes))
	for _, r := range recipes {
		sim := pantry.Cosine(invVec, vocab.Vector(r.Ingredients))
		pri := priorityTerm(r, onHand, w.Normalization)
		out = append(out, Scored{
			Recipe:       r,
			Score:        w.Similarity*sim + w.Priority*pri,
			Similarity:   sim,
			PriorityTerm: pri,
		})
	}
	return out
}

func priorityTerm(r pantry.Recipe, onHand map[string]pantry.InventoryItem, mode Normalization) float64 {
	var sum float64
	for _, ing := range r.Ingredients {
		if it, ok := onHand[pantry.NormalizeIngredient(ing)]; ok {
			sum += it.PriorityScore
		}
	}
	if mode == NormalizeRaw {
		return sum
	}
	if len(r.Ingredients) == 0 {
		return 0
	}
	return sum / (pantry.MaxPriority * float64(len(r.Ingredients)))
}
