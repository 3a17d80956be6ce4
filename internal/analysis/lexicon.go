package analysis

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is the fixed emotion vocabulary free-form labels are mapped onto.
type Category string

const (
	CategoryStress       Category = "stress"
	CategoryAnxiety      Category = "anxiety"
	CategoryFrustration  Category = "frustration"
	CategoryWorry        Category = "worry"
	CategoryNeutral      Category = "neutral"
	CategoryCalm         Category = "calm"
	CategoryJoy          Category = "joy"
	CategoryHappiness    Category = "happiness"
	CategoryExcitement   Category = "excitement"
	CategorySatisfaction Category = "satisfaction"
)

// lexicon is checked in order; the first category whose name occurs in the
// folded label wins.
var lexicon = []struct {
	category Category
	weight   float64
}{
	{CategoryStress, 1},
	{CategoryAnxiety, 0.8},
	{CategoryFrustration, 0.7},
	{CategoryWorry, 0.6},
	{CategoryNeutral, 0},
	{CategoryCalm, -0.5},
	{CategoryJoy, -0.7},
	{CategoryHappiness, -0.8},
	{CategoryExcitement, -0.3},
	{CategorySatisfaction, -0.6},
}

// Classify maps a free-form label onto the lexicon by case-insensitive
// substring match. Unknown labels are CategoryNeutral.
func Classify(label string) Category {
	// Casers carry state, so each call gets its own.
	folded := cases.Fold().String(label)
	for _, entry := range lexicon {
		if strings.Contains(folded, string(entry.category)) {
			return entry.category
		}
	}
	return CategoryNeutral
}

// StressWeight is the contribution per percentage point of a category to the
// derived stress index. Positive categories raise it, calm ones lower it.
func StressWeight(c Category) float64 {
	for _, entry := range lexicon {
		if entry.category == c {
			return entry.weight
		}
	}
	return 0
}

// DeriveStressScore computes a stress index from the distribution alone:
// 50 plus the weighted sum of percentages, clamped and rounded.
func DeriveStressScore(d EmotionDistribution) int {
	score := float64(DefaultScore)
	for label, pct := range d {
		score += StressWeight(Classify(label)) * pct
	}
	return clampScore(score)
}
