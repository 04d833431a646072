package mutation

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"flakestorm/internal/logging"

	"github.com/google/uuid"
)

// Synthesizer produces candidate mutation texts for a seed prompt. Implemented
// by the synthesis package (local model); nil is valid and selects the
// deterministic local mutators.
type Synthesizer interface {
	Synthesize(ctx context.Context, seedPrompt string, kind Kind, count int) ([]string, error)
}

// Engine expands golden prompts into mutation specs.
type Engine struct {
	synth           Synthesizer
	weights         WeightTable
	customTemplates []string
	rng             *rand.Rand
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights replaces the default weight table.
func WithWeights(wt WeightTable) Option {
	return func(e *Engine) { e.weights = wt }
}

// WithCustomTemplates supplies user templates for the custom kind. Each
// template may reference the golden prompt as {prompt}.
func WithCustomTemplates(templates []string) Option {
	return func(e *Engine) { e.customTemplates = templates }
}

// WithSeed fixes the RNG used by the local fallback mutators.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// NewEngine creates an engine. synth may be nil to run fully offline.
func NewEngine(synth Synthesizer, opts ...Option) *Engine {
	e := &Engine{
		synth:   synth,
		weights: WeightTable{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logging.New("mutation"),
	}
	for k, w := range defaultWeights {
		e.weights[k] = w
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand generates perKind mutation specs of each requested kind from the
// golden prompt. Synthesis failures are logged and degrade to the local
// mutators; Expand never fails and never returns fewer kinds than requested.
func (e *Engine) Expand(ctx context.Context, goldenPrompt string, kinds []Kind, perKind int) []Spec {
	specs := make([]Spec, 0, len(kinds)*perKind)
	for _, kind := range kinds {
		texts := e.candidates(ctx, goldenPrompt, kind, perKind)
		for _, text := range texts {
			specs = append(specs, Spec{
				ID:         uuid.NewString(),
				Kind:       kind,
				Text:       text,
				Weight:     e.weights.Weight(kind),
				SourceSeed: goldenPrompt,
			})
		}
	}
	return specs
}

func (e *Engine) candidates(ctx context.Context, seed string, kind Kind, count int) []string {
	if kind == KindCustom && len(e.customTemplates) > 0 {
		return e.renderCustom(seed, count)
	}
	if e.synth == nil {
		return localMutate(e.rng, kind, seed, count)
	}
	texts, err := e.synth.Synthesize(ctx, seed, kind, count)
	if err != nil || len(texts) == 0 {
		e.logger.Warn("synthesis failed, falling back to local mutators",
			"kind", string(kind), "error", err)
		return localMutate(e.rng, kind, seed, count)
	}
	if len(texts) > count {
		texts = texts[:count]
	}
	return texts
}

func (e *Engine) renderCustom(seed string, count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		tpl := e.customTemplates[i%len(e.customTemplates)]
		out = append(out, strings.ReplaceAll(tpl, "{prompt}", seed))
	}
	return out
}
