package agent

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps an invoker with a requests-per-second limiter. It
// complements the orchestrator's concurrency gate: the gate bounds in-flight
// calls, the limiter bounds call starts per second.
type RateLimited struct {
	inner   Invoker
	limiter *rate.Limiter
}

// NewRateLimited bounds inner to rps invocation starts per second.
// rps <= 0 returns inner unchanged.
func NewRateLimited(inner Invoker, rps float64) Invoker {
	if rps <= 0 {
		return inner
	}
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (r *RateLimited) Invoke(ctx context.Context, prompt string) (string, time.Duration, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", 0, err
	}
	return r.inner.Invoke(ctx, prompt)
}
