package orchestrate

import (
	"sort"
	"time"

	"flakestorm/internal/mutation"
)

// finalize assembles the immutable RunResult from the filled result slots.
func finalize(results []MutationResult, started, completed time.Time) *RunResult {
	score, breakdown := Aggregate(results)

	res := &RunResult{
		Results:          results,
		Score:            score,
		Total:            len(results),
		FailedByCategory: breakdown,
		ByKind:           kindStats(results),
		Latency:          latencyStats(results),
		StartedAt:        started,
		CompletedAt:      completed,
	}
	for _, r := range results {
		if r.Passed {
			res.Passed++
		} else {
			res.Failed++
		}
	}
	return res
}

// kindStats counts total/passed per mutation kind in first-seen order.
func kindStats(results []MutationResult) []KindStats {
	index := make(map[mutation.Kind]int)
	var stats []KindStats
	for _, r := range results {
		i, ok := index[r.Mutation.Kind]
		if !ok {
			i = len(stats)
			index[r.Mutation.Kind] = i
			stats = append(stats, KindStats{Kind: r.Mutation.Kind})
		}
		stats[i].Total++
		if r.Passed {
			stats[i].Passed++
		}
	}
	return stats
}

// latencyStats summarizes elapsed times over successful invocations only;
// failed calls (timeouts especially) would skew the percentiles.
func latencyStats(results []MutationResult) LatencyStats {
	var samples []float64
	for _, r := range results {
		if !r.Outcome.Failed() {
			samples = append(samples, r.Outcome.ElapsedMS)
		}
	}
	if len(samples) == 0 {
		return LatencyStats{}
	}
	sort.Float64s(samples)

	var sum float64
	for _, s := range samples {
		sum += s
	}
	return LatencyStats{
		AvgMS: sum / float64(len(samples)),
		P50MS: percentile(samples, 0.50),
		P95MS: percentile(samples, 0.95),
		P99MS: percentile(samples, 0.99),
	}
}

// percentile returns the nearest-rank percentile of sorted samples.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
