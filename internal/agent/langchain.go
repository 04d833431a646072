package agent

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// ChainAdapter delegates invocation to a chain-framework model. Any
// llms.Model works: an ollama-backed local model, an OpenAI-compatible
// remote, or a composed chain exposing the Model interface.
type ChainAdapter struct {
	model llms.Model
}

// NewChainAdapter wraps a chain-framework model.
func NewChainAdapter(model llms.Model) *ChainAdapter {
	return &ChainAdapter{model: model}
}

func (a *ChainAdapter) Invoke(ctx context.Context, prompt string) (string, time.Duration, error) {
	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return "", elapsed, ctx.Err()
		}
		return "", elapsed, &TransportError{Err: err}
	}
	return text, elapsed, nil
}
