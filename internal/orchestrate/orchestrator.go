package orchestrate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flakestorm/internal/agent"
	"flakestorm/internal/invariant"
	"flakestorm/internal/logging"
	"flakestorm/internal/mutation"
)

// ErrNoMutations is returned when Run is called with an empty mutation set.
// This is a caller configuration error, never tolerated silently.
var ErrNoMutations = errors.New("no mutations to run")

// Options bounds one run. Both fields are mandatory and validated by New.
type Options struct {
	// Concurrency is the max number of in-flight invocations.
	Concurrency int
	// CallTimeout bounds each individual invocation.
	CallTimeout time.Duration
}

// Orchestrator fans mutations out to the agent and collects results.
type Orchestrator struct {
	invoker  agent.Invoker
	checkers []invariant.Checker
	opts     Options
	logger   *slog.Logger
}

// New validates options and builds an orchestrator.
func New(invoker agent.Invoker, checkers []invariant.Checker, opts Options) (*Orchestrator, error) {
	if invoker == nil {
		return nil, errors.New("orchestrator requires an invoker")
	}
	if opts.Concurrency <= 0 {
		return nil, errors.New("concurrency must be > 0")
	}
	if opts.CallTimeout <= 0 {
		return nil, errors.New("call timeout must be > 0")
	}
	return &Orchestrator{
		invoker:  invoker,
		checkers: checkers,
		opts:     opts,
		logger:   logging.New("orchestrate"),
	}, nil
}

// Run executes every mutation through the invoke-then-evaluate pipeline under
// the concurrency gate. One slot per input spec is pre-allocated so results
// come back in input order no matter the completion order. Per-mutation
// failures are recorded, never fatal. Cancelling ctx skips not-yet-started
// mutations (recorded as cancelled) and still returns the partial RunResult.
func (o *Orchestrator) Run(ctx context.Context, specs []mutation.Spec) (*RunResult, error) {
	if len(specs) == 0 {
		return nil, ErrNoMutations
	}

	started := time.Now()
	o.logger.Info("run started",
		"mutations", len(specs),
		"concurrency", o.opts.Concurrency,
		"call_timeout", o.opts.CallTimeout)

	results := make([]MutationResult, len(specs))

	// Worker pool: errgroup bounds in-flight tasks; each slot is written by
	// exactly one worker, so no locking on the result slice.
	g := new(errgroup.Group)
	g.SetLimit(o.opts.Concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = o.runOne(ctx, spec)
			return nil
		})
	}
	_ = g.Wait() // per-mutation errors live in the results

	res := finalize(results, started, time.Now())
	o.logger.Info("run finished",
		"total", res.Total,
		"passed", res.Passed,
		"failed", res.Failed,
		"score", res.Score,
		"duration", res.Duration().Round(time.Millisecond))
	return res, nil
}

// runOne performs the full invoke-then-evaluate pipeline for one mutation.
func (o *Orchestrator) runOne(ctx context.Context, spec mutation.Spec) MutationResult {
	// Cooperative cancellation: checked before starting, never mid-flight.
	if ctx.Err() != nil {
		outcome := Outcome{
			MutationID: spec.ID,
			Error:      ErrorCancelled,
			Detail:     ctx.Err().Error(),
		}
		return MutationResult{
			Mutation: spec,
			Outcome:  outcome,
			Verdicts: o.shortCircuit(outcome),
		}
	}

	// The call context carries only the per-call timeout. Cancelling the run
	// must not preempt a call that already started; it finishes or times out.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.CallTimeout)
	text, elapsed, err := o.invoker.Invoke(callCtx, spec.Text)
	cancel()

	outcome := Outcome{
		MutationID: spec.ID,
		Response:   text,
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000.0,
		Error:      classify(err),
	}
	if err != nil {
		outcome.Response = ""
		outcome.Detail = err.Error()
		o.logger.Warn("invocation failed",
			"mutation_id", spec.ID, "kind", string(spec.Kind),
			"error_kind", string(outcome.Error), "error", err)
		return MutationResult{
			Mutation: spec,
			Outcome:  outcome,
			Verdicts: o.shortCircuit(outcome),
		}
	}

	verdicts := o.evaluate(ctx, outcome)
	passed := true
	for _, v := range verdicts {
		if !v.Passed {
			passed = false
			break
		}
	}
	return MutationResult{Mutation: spec, Outcome: outcome, Verdicts: verdicts, Passed: passed}
}

// evaluate runs every checker exhaustively; one failure never skips the rest.
func (o *Orchestrator) evaluate(ctx context.Context, outcome Outcome) []invariant.Verdict {
	resp := invariant.Response{Text: outcome.Response, ElapsedMS: outcome.ElapsedMS}
	verdicts := make([]invariant.Verdict, 0, len(o.checkers))
	for _, c := range o.checkers {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.CallTimeout)
		verdicts = append(verdicts, c.Check(checkCtx, resp))
		cancel()
	}
	return verdicts
}

// shortCircuit marks every invariant failed with the outcome's error kind.
func (o *Orchestrator) shortCircuit(outcome Outcome) []invariant.Verdict {
	verdicts := make([]invariant.Verdict, 0, len(o.checkers))
	for _, c := range o.checkers {
		verdicts = append(verdicts, invariant.Verdict{
			Invariant: c.Name(),
			Passed:    false,
			Detail:    string(outcome.Error),
		})
	}
	return verdicts
}

// classify maps an invocation error to its outcome kind.
func classify(err error) ErrorKind {
	if err == nil {
		return ErrorNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCancelled
	}
	var ae *agent.AdapterError
	if errors.As(err, &ae) {
		return ErrorAdapterFault
	}
	return ErrorTransport
}
