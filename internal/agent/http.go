package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAdapter posts the prompt as JSON to a chat endpoint and extracts the
// reply text from the JSON response (or uses the raw body for text replies).
type HTTPAdapter struct {
	Endpoint string
	Headers  map[string]string

	client *http.Client
}

// NewHTTPAdapter creates an adapter for a JSON-over-HTTP agent endpoint.
// timeout bounds each request independently of the caller's context.
func NewHTTPAdapter(endpoint string, headers map[string]string, timeout time.Duration) *HTTPAdapter {
	return &HTTPAdapter{
		Endpoint: endpoint,
		Headers:  headers,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpRequest struct {
	Input string `json:"input"`
}

// Invoke sends {"input": prompt} and reads the reply within ctx's deadline.
func (a *HTTPAdapter) Invoke(ctx context.Context, prompt string) (string, time.Duration, error) {
	body, err := json.Marshal(httpRequest{Input: prompt})
	if err != nil {
		return "", 0, &AdapterError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, &AdapterError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return "", elapsed, ctx.Err()
		}
		return "", elapsed, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Since(start), &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	elapsed = time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", elapsed, &TransportError{Err: fmt.Errorf("endpoint returned %s", resp.Status)}
	}

	return extractText(raw), elapsed, nil
}

// replyFields are tried in order when the response is a JSON object.
var replyFields = []string{"output", "response", "text", "message", "answer"}

// extractText pulls the reply out of a JSON object response, falling back to
// the raw body for plain-text agents.
func extractText(raw []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return string(raw)
	}
	for _, field := range replyFields {
		if v, ok := obj[field]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				return s
			}
		}
	}
	return string(raw)
}
