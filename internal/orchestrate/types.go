// Package orchestrate drives the mutation pipeline: it fans mutations out to
// the target agent under a bounded worker pool, routes every response through
// the configured invariant checkers, and reduces the outcomes to a weighted
// robustness score.
package orchestrate

import (
	"math"
	"time"

	"flakestorm/internal/invariant"
	"flakestorm/internal/mutation"
)

// ErrorKind classifies what went wrong with one invocation.
type ErrorKind string

const (
	ErrorNone         ErrorKind = "none"
	ErrorTimeout      ErrorKind = "timeout"
	ErrorTransport    ErrorKind = "transport"
	ErrorAdapterFault ErrorKind = "adapter_fault"
	ErrorCancelled    ErrorKind = "cancelled"
)

// Outcome is the raw result of invoking the agent with one mutation.
// At most one per mutation per run.
type Outcome struct {
	MutationID string    `json:"mutation_id"`
	Response   string    `json:"response,omitempty"`
	ElapsedMS  float64   `json:"elapsed_ms"`
	Error      ErrorKind `json:"error"`
	Detail     string    `json:"detail,omitempty"` // underlying error text, empty on success
}

// Failed reports whether the invocation itself failed.
func (o Outcome) Failed() bool { return o.Error != ErrorNone }

// MutationResult bundles one mutation with its invocation outcome and the
// verdict of every configured invariant.
type MutationResult struct {
	Mutation mutation.Spec       `json:"mutation"`
	Outcome  Outcome             `json:"outcome"`
	Verdicts []invariant.Verdict `json:"verdicts"`
	// Passed is true iff the invocation succeeded and every verdict passed.
	Passed bool `json:"passed"`
}

// LatencyStats summarizes invocation latency over successful calls.
type LatencyStats struct {
	AvgMS float64 `json:"avg_ms"`
	P50MS float64 `json:"p50_ms"`
	P95MS float64 `json:"p95_ms"`
	P99MS float64 `json:"p99_ms"`
}

// KindStats counts results per mutation kind.
type KindStats struct {
	Kind   mutation.Kind `json:"kind"`
	Total  int           `json:"total"`
	Passed int           `json:"passed"`
}

// RunResult is the immutable product of one run. Results preserve the input
// mutation order regardless of completion order.
type RunResult struct {
	Results []MutationResult `json:"results"`
	// Score is the weighted robustness score in [0,1], or NaN when the total
	// weight is zero (no mutations contributed). Use Undefined to test.
	Score  float64 `json:"-"`
	Total  int     `json:"total"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	// FailedByCategory buckets failures by "kind/invariant".
	FailedByCategory map[string]int `json:"failed_by_category,omitempty"`
	ByKind           []KindStats    `json:"by_kind,omitempty"`
	Latency          LatencyStats   `json:"latency"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      time.Time      `json:"completed_at"`
}

// Undefined reports whether the score is the degenerate no-data sentinel.
func (r *RunResult) Undefined() bool { return math.IsNaN(r.Score) }

// Duration is the wall-clock time of the run.
func (r *RunResult) Duration() time.Duration { return r.CompletedAt.Sub(r.StartedAt) }
