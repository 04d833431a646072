package orchestrate

import (
	"fmt"
	"math"
)

// Aggregate reduces per-mutation results to the weighted robustness score and
// a failure breakdown keyed "kind/invariant". A mutation contributes its full
// weight when it passed, zero otherwise. With zero total weight the score is
// NaN: undefined, never 0 or 1.
func Aggregate(results []MutationResult) (float64, map[string]int) {
	var totalWeight, passedWeight float64
	breakdown := make(map[string]int)

	for _, r := range results {
		totalWeight += r.Mutation.Weight
		if r.Passed {
			passedWeight += r.Mutation.Weight
			continue
		}
		for _, v := range r.Verdicts {
			if !v.Passed {
				key := fmt.Sprintf("%s/%s", r.Mutation.Kind, v.Invariant)
				breakdown[key]++
			}
		}
	}

	if totalWeight == 0 {
		return math.NaN(), breakdown
	}
	return passedWeight / totalWeight, breakdown
}
