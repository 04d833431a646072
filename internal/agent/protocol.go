// Package agent defines the single capability the engine needs from a target
// agent (send a prompt, get text back) and the adapter variants that provide
// it over HTTP, an in-process function, or a chain framework.
package agent

import (
	"context"
	"fmt"
	"time"
)

// Invoker delivers one prompt to the target agent. ctx carries the per-call
// timeout; implementations must honor it. elapsed is the time the call took,
// reported even on failure.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (text string, elapsed time.Duration, err error)
}

// TransportError wraps connection-level failures (refused, DNS, non-2xx).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// AdapterError wraps failures inside the adapter itself: malformed responses,
// panicking callables, misbehaving chain objects.
type AdapterError struct {
	Err error
}

func (e *AdapterError) Error() string { return fmt.Sprintf("adapter: %v", e.Err) }
func (e *AdapterError) Unwrap() error { return e.Err }
