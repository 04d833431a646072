// Package invariant implements the declarative pass/fail rules applied to
// agent responses: a registry of named checkers built from configuration at
// startup, each a pure predicate over one response.
package invariant

import (
	"context"
	"fmt"
	"sort"
)

// Verdict is the outcome of one checker against one response.
type Verdict struct {
	Invariant string `json:"invariant"`
	Passed    bool   `json:"passed"`
	Detail    string `json:"detail,omitempty"`
}

// Response is the view of an invocation outcome checkers operate on.
type Response struct {
	Text      string
	ElapsedMS float64
}

// Checker verifies one invariant against a response. Check must be
// idempotent: the same response always yields the same verdict.
type Checker interface {
	Name() string
	Check(ctx context.Context, resp Response) Verdict
}

// Scorer supplies the externally computed similarity score in [0,1] consumed
// by the similarity checker.
type Scorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// Params is the configuration surface of a single invariant entry.
type Params struct {
	Type      string   `yaml:"type" json:"type"`
	Value     string   `yaml:"value,omitempty" json:"value,omitempty"`
	MaxMS     float64  `yaml:"max_ms,omitempty" json:"max_ms,omitempty"`
	Threshold float64  `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Intent    string   `yaml:"intent,omitempty" json:"intent,omitempty"`
	Patterns  []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// UnknownInvariantError reports an invariant type with no registered builder.
// Raised at configuration time, before any invocation starts.
type UnknownInvariantError struct {
	Name string
}

func (e *UnknownInvariantError) Error() string {
	return fmt.Sprintf("unknown invariant type %q", e.Name)
}

// Builder constructs a checker from its configuration entry.
type Builder func(Params) (Checker, error)

// Registry maps invariant type names to builders. It is an explicit value
// constructed at startup and passed into the orchestrator wiring; there is no
// ambient global registry.
type Registry struct {
	builders map[string]Builder
	scorer   Scorer
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithScorer wires the similarity collaborator. Without it, building a
// similarity invariant fails at configuration time.
func WithScorer(s Scorer) RegistryOption {
	return func(r *Registry) { r.scorer = s }
}

// NewRegistry returns a registry with all built-in checkers registered.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{builders: map[string]Builder{}}
	for _, opt := range opts {
		opt(r)
	}
	r.Register("contains", buildContains)
	r.Register("latency", buildLatency)
	r.Register("valid_json", buildValidJSON)
	r.Register("regex", buildRegex)
	r.Register("excludes_pii", buildExcludesPII)
	r.Register("refusal_check", buildRefusal)
	r.Register("similarity", r.buildSimilarity)
	return r
}

// Register adds or replaces a builder.
func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// Known reports whether a type name has a registered builder.
func (r *Registry) Known(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build constructs one checker per configuration entry. An unknown type
// yields *UnknownInvariantError and no checkers.
func (r *Registry) Build(entries []Params) ([]Checker, error) {
	checkers := make([]Checker, 0, len(entries))
	for _, p := range entries {
		b, ok := r.builders[p.Type]
		if !ok {
			return nil, &UnknownInvariantError{Name: p.Type}
		}
		c, err := b(p)
		if err != nil {
			return nil, fmt.Errorf("invariant %q: %w", p.Type, err)
		}
		checkers = append(checkers, c)
	}
	return checkers, nil
}
