package pantry

import (
	"math"
	"time"
)

const (
	// MaxPriority is the score of anything expiring today or already expired.
	MaxPriority = 100.0
	// PriorityDecayPerDay is the linear drop per day of remaining shelf life.
	PriorityDecayPerDay = 5.0

	// MaxExpiringBonus is the per-ingredient bonus at zero days remaining.
	MaxExpiringBonus = 50.0
	// BonusDecayDays is the e-folding time of the expiring bonus.
	BonusDecayDays = 1.0
)

// DaysUntil counts whole days from now until exp, flooring toward negative
// infinity: 36 hours is 1 day, -1 hour is -1 day.
func DaysUntil(exp, now time.Time) int {
	d := exp.Sub(now)
	return int(math.Floor(d.Hours() / 24))
}

// PriorityScore maps an expiration date onto [0,100]: 100 when the item
// expires today or earlier, then 5 points less per remaining day.
func PriorityScore(exp, now time.Time) float64 {
	days := DaysUntil(exp, now)
	if days <= 0 {
		return MaxPriority
	}
	return math.Max(0, MaxPriority-PriorityDecayPerDay*float64(days))
}

// ExpiringBonus is the exponential urgency bonus used to label synthetic
// interactions. Items beyond thresholdDays contribute nothing; expired items
// are treated as expiring today.
func ExpiringBonus(days, thresholdDays int) float64 {
	if days > thresholdDays {
		return 0
	}
	if days < 0 {
		days = 0
	}
	return MaxExpiringBonus * math.Exp(-float64(days)/BonusDecayDays)
}

// Prioritize fills PriorityScore on every item relative to now.
func Prioritize(items []InventoryItem, now time.Time) {
	for i := range items {
		items[i].PriorityScore = PriorityScore(items[i].ExpirationDate, now)
	}
}
