package agent

import (
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
)

// Options selects and configures an adapter variant at construction time.
type Options struct {
	Type     string // "http", "func", "chain"
	Endpoint string // http: URL; chain: model server URL
	Model    string // chain: model name
	Headers  map[string]string
	Timeout  time.Duration
	// RateLimit is the max invocation starts per second; 0 disables.
	RateLimit float64
	// Func is the in-process callable for the "func" type.
	Func AgentFunc
}

// New builds the invoker for the configured adapter type.
func New(opts Options) (Invoker, error) {
	var inner Invoker
	switch opts.Type {
	case "http":
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("http agent requires an endpoint")
		}
		inner = NewHTTPAdapter(opts.Endpoint, opts.Headers, opts.Timeout)
	case "func":
		if opts.Func == nil {
			return nil, fmt.Errorf("func agent requires a callable")
		}
		inner = NewFuncAdapter(opts.Func)
	case "chain":
		if opts.Model == "" {
			return nil, fmt.Errorf("chain agent requires a model name")
		}
		var llmOpts []ollama.Option
		llmOpts = append(llmOpts, ollama.WithModel(opts.Model))
		if opts.Endpoint != "" {
			llmOpts = append(llmOpts, ollama.WithServerURL(opts.Endpoint))
		}
		model, err := ollama.New(llmOpts...)
		if err != nil {
			return nil, fmt.Errorf("build chain model: %w", err)
		}
		inner = NewChainAdapter(model)
	default:
		return nil, fmt.Errorf("unknown agent type %q (want http, func or chain)", opts.Type)
	}
	return NewRateLimited(inner, opts.RateLimit), nil
}
