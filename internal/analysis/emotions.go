package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// collapseTolerance is the largest |sum-100| kept as a real distribution.
	collapseTolerance = 30.0
	// rescaleTolerance is the largest |sum-100| passed through unchanged.
	rescaleTolerance = 5.0
	// thresholdEpsilon absorbs float rounding when comparing against the tolerances.
	thresholdEpsilon = 1e-9
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ValidateEmotions turns whatever the model put under "emotions" into a
// distribution that satisfies the invariants: non-empty, values in (0,100],
// total within tolerance of 100. It never fails.
//
//   - values are coerced from numbers or strings led by a number ("40", "40%");
//     anything non-numeric, non-finite or <= 0 is dropped
//   - an empty map, or one whose total is more than 30 away from 100,
//     collapses to {"Neutral": 100}
//   - a total more than 5 away from 100 is rescaled to 100 and each value
//     rounded to the nearest integer
//   - otherwise the values pass through unchanged
//
// Labels are kept verbatim.
func ValidateEmotions(v any) EmotionDistribution {
	raw, ok := v.(map[string]any)
	if !ok {
		if typed, isTyped := v.(EmotionDistribution); isTyped {
			raw = distributionToAny(typed)
		} else if typed, isTyped := v.(map[string]float64); isTyped {
			raw = distributionToAny(typed)
		} else {
			return neutralDistribution()
		}
	}

	labels := make([]string, 0, len(raw))
	for label := range raw {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	// Summed in label order so the total does not depend on map iteration.
	parsed := make(EmotionDistribution, len(raw))
	var sum float64
	for _, label := range labels {
		num, ok := coerceNumber(raw[label])
		if !ok || num <= 0 {
			continue
		}
		parsed[label] = num
		sum += num
	}

	deviation := math.Abs(sum - 100)
	if len(parsed) == 0 || deviation-collapseTolerance > thresholdEpsilon {
		return neutralDistribution()
	}

	if deviation-rescaleTolerance > thresholdEpsilon {
		factor := 100 / sum
		rescaled := make(EmotionDistribution, len(parsed))
		for label, value := range parsed {
			// Entries that round away to nothing are dropped so a second pass is a no-op.
			if r := math.Round(value * factor); r > 0 {
				rescaled[label] = r
			}
		}
		return rescaled
	}

	for label, value := range parsed {
		if value > 100 {
			parsed[label] = 100
		}
	}
	return parsed
}

func neutralDistribution() EmotionDistribution {
	return EmotionDistribution{NeutralLabel: 100}
}

func distributionToAny(d map[string]float64) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// coerceNumber accepts JSON numbers and strings starting with a number
// ("40", "40%", "40 percent"); the leading number is used. Non-finite
// results are rejected.
func coerceNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		prefix := leadingNumber.FindString(strings.TrimSpace(n))
		if prefix == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
