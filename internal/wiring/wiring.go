// Package wiring assembles a validated config into a runnable pipeline.
// Both the CLI and the MCP server go through Run, so run semantics stay
// identical across entry points.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"flakestorm/internal/agent"
	"flakestorm/internal/config"
	"flakestorm/internal/invariant"
	"flakestorm/internal/logging"
	"flakestorm/internal/mutation"
	"flakestorm/internal/orchestrate"
	"flakestorm/internal/synthesis"
)

// Pipeline is an assembled, validated run: adapter, checkers and mutation
// engine built from one config.
type Pipeline struct {
	cfg      *config.Config
	invoker  agent.Invoker
	checkers []invariant.Checker
	engine   *mutation.Engine
	synth    *synthesis.Client // nil when no model is configured
	logger   *slog.Logger
}

// Build validates cfg and constructs the pipeline. All configuration
// problems surface here, before any invocation starts.
func Build(cfg *config.Config) (*Pipeline, error) {
	var synth *synthesis.Client
	if cfg.Model.Name != "" || cfg.Model.EmbeddingModel != "" {
		synth = synthesis.New(cfg.Model.BaseURL, cfg.Model.Name, cfg.Model.EmbeddingModel)
	}

	var regOpts []invariant.RegistryOption
	if synth != nil && cfg.Model.EmbeddingModel != "" {
		regOpts = append(regOpts, invariant.WithScorer(synth))
	}
	reg := invariant.NewRegistry(regOpts...)

	if err := cfg.Validate(reg); err != nil {
		return nil, err
	}

	checkers, err := reg.Build(cfg.Invariants)
	if err != nil {
		return nil, err
	}

	invoker, err := agent.New(agent.Options{
		Type:      cfg.Agent.Type,
		Endpoint:  cfg.Agent.Endpoint,
		Model:     cfg.Agent.Model,
		Headers:   cfg.Agent.Headers,
		Timeout:   cfg.Agent.Timeout(),
		RateLimit: cfg.Agent.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("build agent adapter: %w", err)
	}

	weights, err := mutation.NewWeightTable(cfg.Mutations.Weights)
	if err != nil {
		return nil, err
	}
	engineOpts := []mutation.Option{mutation.WithWeights(weights)}
	if len(cfg.Mutations.CustomTemplates) > 0 {
		engineOpts = append(engineOpts, mutation.WithCustomTemplates(cfg.Mutations.CustomTemplates))
	}
	var synthesizer mutation.Synthesizer
	if synth != nil && cfg.Model.Name != "" {
		synthesizer = synth
	}

	return &Pipeline{
		cfg:      cfg,
		invoker:  invoker,
		checkers: checkers,
		engine:   mutation.NewEngine(synthesizer, engineOpts...),
		synth:    synth,
		logger:   logging.New("wiring"),
	}, nil
}

// Expand turns the configured golden prompts into mutation specs, applying
// the edition caps.
func (p *Pipeline) Expand(ctx context.Context) ([]mutation.Spec, error) {
	kinds, err := p.cfg.Kinds()
	if err != nil {
		return nil, err
	}

	prompts, capped := config.CapPrompts(p.cfg.GoldenPrompts)
	if capped {
		p.logger.Warn("golden prompts capped",
			"configured", len(p.cfg.GoldenPrompts), "max", config.MaxGoldenPrompts)
	}
	perKind, capped := config.CapCountPerType(p.cfg.Mutations.CountPerType, len(prompts), len(kinds))
	if capped {
		p.logger.Warn("mutation count capped",
			"configured", p.cfg.Mutations.CountPerType,
			"effective", perKind,
			"max_total", config.MaxMutationsPerRun)
	}

	var specs []mutation.Spec
	for _, prompt := range prompts {
		specs = append(specs, p.engine.Expand(ctx, prompt, kinds, perKind)...)
	}
	return specs, nil
}

// Run expands, dispatches and evaluates in one shot.
func (p *Pipeline) Run(ctx context.Context) (*orchestrate.RunResult, error) {
	specs, err := p.Expand(ctx)
	if err != nil {
		return nil, err
	}
	orch, err := orchestrate.New(p.invoker, p.checkers, orchestrate.Options{
		Concurrency: p.cfg.Mutations.Concurrency,
		CallTimeout: p.cfg.Agent.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	return orch.Run(ctx, specs)
}

// Verify checks external collaborators without launching a run: the model
// server (when configured) must answer. The agent itself is not invoked
// since doing so has side effects.
func (p *Pipeline) Verify(ctx context.Context) error {
	if p.synth == nil {
		p.logger.Info("no model configured, verification limited to config")
		return nil
	}
	if err := p.synth.Verify(ctx); err != nil {
		return err
	}
	p.logger.Info("model server reachable")
	return nil
}

// Run loads nothing and saves nothing: it assembles cfg and executes the
// full pipeline. Callers own persistence and rendering.
func Run(ctx context.Context, cfg *config.Config) (*orchestrate.RunResult, error) {
	p, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}
