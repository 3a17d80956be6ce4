package dashboard

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

type classRule struct {
	needles []string
	class   string
}

// first match wins
var classRules = []classRule{
	{[]string{"stress"}, "emotion-stress"},
	{[]string{"anxiety", "worried"}, "emotion-anxiety"},
	{[]string{"joy", "happy"}, "emotion-joy"},
	{[]string{"neutral"}, "emotion-neutral"},
	{[]string{"calm"}, "emotion-calm"},
	{[]string{"frustration", "angry"}, "emotion-frustration"},
	{[]string{"excitement"}, "emotion-excitement"},
	{[]string{"satisfaction"}, "emotion-satisfaction"},
}

const defaultClass = "emotion-neutral"

var (
	stressRecommendations = []string{
		"Try a 5-minute breathing exercise before checking emails",
		"Set specific times for email checking rather than constant monitoring",
		"Use email filters to prioritize important messages",
		"Consider a digital detox for at least 1 hour each day",
		"Practice mindfulness meditation to reduce email-induced stress",
	}
	frustrationRecommendations = []string{
		"Wait 10 minutes before responding to frustrating emails",
		"Use templates for common responses to save energy",
		"Try the 'empty inbox' approach to reduce email clutter",
		"Schedule difficult email conversations rather than using email",
		"Use a voice recorder to verbalize thoughts before writing them down",
	}
	positiveRecommendations = []string{
		"Share your positive energy by recognizing others' contributions",
		"Use your positive momentum to tackle challenging communications",
		"Document what's working well in your communication style",
		"Maintain balance by setting boundaries even when feeling positive",
		"Consider mentoring others who struggle with email anxiety",
	}
	defaultRecommendations = []string{
		"Establish a consistent email routine to maintain balance",
		"Try the 2-minute rule: if it takes less than 2 minutes, do it now",
		"Experiment with email batching to improve productivity",
		"Use email analytics to understand your communication patterns",
		"Practice gratitude by sending one positive email each day",
	}
)

// MaxRecommendations is how many recommendations a view carries
const MaxRecommendations = 3

// EmotionClass returns the CSS class for an emotion or sentiment label
func EmotionClass(label string) string {
	l := fold(label)
	for _, rule := range classRules {
		if containsAny(l, rule.needles...) {
			return rule.class
		}
	}
	return defaultClass
}

// Recommendations picks advice for the dominant emotion, ignoring entries
// with no weight
func Recommendations(d analysis.EmotionDistribution) []string {
	list := defaultRecommendations

	dominant, ok := d.Dominant()
	if ok && dominant.Value > 0 {
		l := fold(dominant.Label)
		switch {
		case containsAny(l, "stress", "anxiety", "worry"):
			list = stressRecommendations
		case containsAny(l, "frustration", "anger"):
			list = frustrationRecommendations
		case containsAny(l, "joy", "happy", "excitement"):
			list = positiveRecommendations
		}
	}

	out := make([]string, MaxRecommendations)
	copy(out, list)
	return out
}

// fold lower-cases for matching. Casers carry state, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
