// Package config owns the flakestorm.yaml surface: loading, validation and
// defaults. Validation failures are ValidationError values and always abort
// before any invocation starts.
package config

import (
	"fmt"
	"strings"
	"time"

	"flakestorm/internal/invariant"
	"flakestorm/internal/mutation"
)

// Config is the full flakestorm.yaml document.
type Config struct {
	Agent         AgentConfig        `yaml:"agent"`
	Model         ModelConfig        `yaml:"model"`
	GoldenPrompts []string           `yaml:"golden_prompts"`
	Mutations     MutationConfig     `yaml:"mutations"`
	Invariants    []invariant.Params `yaml:"invariants"`
	Output        OutputConfig       `yaml:"output"`
}

// AgentConfig selects and configures the target agent adapter.
type AgentConfig struct {
	Type      string            `yaml:"type"`     // http, chain
	Endpoint  string            `yaml:"endpoint"` // http: URL; chain: model server URL
	Model     string            `yaml:"model,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	TimeoutMS int               `yaml:"timeout_ms"`
	RateLimit float64           `yaml:"rate_limit,omitempty"` // invocation starts per second, 0 = unlimited
}

// Timeout returns the per-call timeout as a duration.
func (a AgentConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// ModelConfig points at the local model server used for mutation synthesis
// and similarity embeddings.
type ModelConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"` // default: local Ollama
	Name           string `yaml:"name"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
}

// MutationConfig controls the expansion of golden prompts.
type MutationConfig struct {
	Types           []string           `yaml:"types"`
	CountPerType    int                `yaml:"count_per_type"`
	Weights         map[string]float64 `yaml:"weights,omitempty"`
	Concurrency     int                `yaml:"concurrency"`
	CustomTemplates []string           `yaml:"custom_templates,omitempty"`
}

// OutputConfig selects the report format and destination.
type OutputConfig struct {
	Format string `yaml:"format"` // html, json, terminal
	Path   string `yaml:"path,omitempty"`
}

// ValidationError aggregates every problem found in one pass so users fix
// their config in one round trip.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

// Kinds parses the configured mutation type names.
func (c *Config) Kinds() ([]mutation.Kind, error) {
	kinds := make([]mutation.Kind, 0, len(c.Mutations.Types))
	for _, name := range c.Mutations.Types {
		k, err := mutation.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Validate checks the whole document against reg's known invariants.
// It returns a *ValidationError listing every problem, or nil.
func (c *Config) Validate(reg *invariant.Registry) error {
	var problems []string

	switch c.Agent.Type {
	case "http":
		if c.Agent.Endpoint == "" {
			problems = append(problems, "agent.endpoint is required for type http")
		}
	case "chain":
		if c.Agent.Model == "" {
			problems = append(problems, "agent.model is required for type chain")
		}
	case "":
		problems = append(problems, "agent.type is required (http or chain)")
	default:
		problems = append(problems, fmt.Sprintf("agent.type %q not supported (want http or chain)", c.Agent.Type))
	}
	if c.Agent.TimeoutMS <= 0 {
		problems = append(problems, "agent.timeout_ms must be > 0")
	}
	if c.Agent.RateLimit < 0 {
		problems = append(problems, "agent.rate_limit must be >= 0")
	}

	if len(c.GoldenPrompts) == 0 {
		problems = append(problems, "golden_prompts must list at least one prompt")
	}
	for i, p := range c.GoldenPrompts {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, fmt.Sprintf("golden_prompts[%d] is empty", i))
		}
	}

	if len(c.Mutations.Types) == 0 {
		problems = append(problems, "mutations.types must list at least one kind")
	}
	if _, err := c.Kinds(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Mutations.CountPerType <= 0 {
		problems = append(problems, "mutations.count_per_type must be > 0")
	}
	if c.Mutations.Concurrency <= 0 {
		problems = append(problems, "mutations.concurrency must be > 0")
	}
	for name, w := range c.Mutations.Weights {
		if w <= 0 {
			problems = append(problems, fmt.Sprintf("mutations.weights.%s must be > 0, got %v", name, w))
		}
	}

	if len(c.Invariants) == 0 {
		problems = append(problems, "invariants must list at least one check")
	}
	for i, inv := range c.Invariants {
		if !reg.Known(inv.Type) {
			problems = append(problems, (&invariant.UnknownInvariantError{Name: inv.Type}).Error()+
				fmt.Sprintf(" (invariants[%d]; known: %s)", i, strings.Join(reg.Names(), ", ")))
		}
		if inv.Type == "similarity" && c.Model.EmbeddingModel == "" {
			problems = append(problems, "model.embedding_model is required when a similarity invariant is configured")
		}
	}

	switch c.Output.Format {
	case "", "html", "json", "terminal":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q not supported (want html, json or terminal)", c.Output.Format))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
