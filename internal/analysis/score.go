package analysis

import "math"

// ValidateScore maps any model-supplied score onto an integer in [0,100].
// Numbers and strings led by a number ("87", "87%") are accepted. Missing or
// non-numeric input yields DefaultScore; out-of-range numbers are clamped.
func ValidateScore(v any) int {
	f, ok := coerceNumber(v)
	if !ok {
		return DefaultScore
	}
	return clampScore(f)
}

func clampScore(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return int(math.Round(f))
	}
}
