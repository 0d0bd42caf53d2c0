package pantry

import (
	"math"
	"sort"
)

// Vocabulary is the sorted set of every ingredient across the recipe book. It
// fixes the dimension order of all presence vectors, so an inventory vector
// and a recipe vector are only comparable when built from the same Vocabulary.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// NewVocabulary builds the vocabulary from the union of recipe ingredients.
// The result does not depend on recipe order.
func NewVocabulary(recipes []Recipe) *Vocabulary {
	set := make(map[string]struct{})
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if ing = NormalizeIngredient(ing); ing != "" {
				set[ing] = struct{}{}
			}
		}
	}

	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms returns a copy of the ordered vocabulary.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Vector returns the binary presence vector of names over the vocabulary.
// Names outside the vocabulary are ignored.
func (v *Vocabulary) Vector(names []string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, n := range names {
		if i, ok := v.index[NormalizeIngredient(n)]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths and
// all-zero vectors yield 0 instead of NaN.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	// Rounding can push identical vectors a hair above 1.
	return math.Min(1, dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
