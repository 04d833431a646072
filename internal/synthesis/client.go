// Package synthesis talks to a local model server (Ollama's OpenAI-compatible
// endpoint) for the two collaborator roles the engine needs: generating
// mutation candidate texts and scoring semantic similarity via embeddings.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"flakestorm/internal/logging"
	"flakestorm/internal/mutation"
)

// DefaultBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// Client wraps the model server for synthesis and embedding calls.
type Client struct {
	api        *openai.Client
	model      string
	embedModel string
	logger     *slog.Logger
}

// New builds a client. baseURL empty selects the local Ollama default.
// embedModel may be empty when no similarity invariant is configured.
func New(baseURL, model, embedModel string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig("ollama") // key is ignored by local servers
	cfg.BaseURL = baseURL
	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		model:      model,
		embedModel: embedModel,
		logger:     logging.New("synthesis"),
	}
}

// Synthesize asks the model for count adversarial variants of the seed
// prompt. The caller treats any failure as non-fatal and falls back to local
// mutators.
func (c *Client) Synthesize(ctx context.Context, seedPrompt string, kind mutation.Kind, count int) ([]string, error) {
	instruction := mutation.Instruction(kind, seedPrompt, count)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You generate adversarial test variants of prompts for robustness testing. " +
					"Output only the variants, one per line, no numbering, no commentary.",
			},
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
		Temperature: 0.9,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	candidates := parseCandidates(resp.Choices[0].Message.Content, count)
	c.logger.Debug("synthesized mutations",
		"kind", string(kind), "requested", count, "got", len(candidates))
	return candidates, nil
}

// Score returns the embedding cosine similarity of a and b, clamped to [0,1].
func (c *Client) Score(ctx context.Context, a, b string) (float64, error) {
	if c.embedModel == "" {
		return 0, fmt.Errorf("no embedding model configured")
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{a, b},
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return 0, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) < 2 {
		return 0, fmt.Errorf("embedding response has %d vectors, want 2", len(resp.Data))
	}
	return cosine(resp.Data[0].Embedding, resp.Data[1].Embedding)
}

// Verify checks the model server is reachable, for `flakestorm verify`.
func (c *Client) Verify(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	return nil
}

// parseCandidates splits a model reply into at most count candidate lines,
// stripping bullets, numbering and surrounding quotes.
func parseCandidates(reply string, count int) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == count {
			break
		}
	}
	return out
}

// cosine computes cosine similarity clamped to [0,1].
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("embedding length mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude embedding")
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}
