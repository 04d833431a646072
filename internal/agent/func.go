package agent

import (
	"context"
	"fmt"
	"time"
)

// AgentFunc is an in-process agent callable.
type AgentFunc func(ctx context.Context, prompt string) (string, error)

// FuncAdapter invokes an in-process function. Panics in the callable are
// recovered and reported as adapter faults so one bad mutation cannot take
// down the run.
type FuncAdapter struct {
	fn AgentFunc
}

// NewFuncAdapter wraps an in-process agent function.
func NewFuncAdapter(fn AgentFunc) *FuncAdapter {
	return &FuncAdapter{fn: fn}
}

func (a *FuncAdapter) Invoke(ctx context.Context, prompt string) (text string, elapsed time.Duration, err error) {
	start := time.Now()
	defer func() {
		elapsed = time.Since(start)
		if r := recover(); r != nil {
			text = ""
			err = &AdapterError{Err: fmt.Errorf("agent function panicked: %v", r)}
		}
	}()

	text, err = a.fn(ctx, prompt)
	if err != nil && ctx.Err() != nil {
		return "", time.Since(start), ctx.Err()
	}
	if err != nil {
		return "", time.Since(start), &AdapterError{Err: err}
	}
	return text, time.Since(start), nil
}
