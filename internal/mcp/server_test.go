package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpserver "flakestorm/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *mcpserver.Server {
	t.Helper()
	srv := mcpserver.NewServer("test")
	t.Cleanup(srv.Shutdown)
	return srv
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

// callToolErr is like callTool but expects the call to fail.
func callToolErr(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return err.Error()
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s) should have failed", name)
	}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// writeTestConfig stands up an echo agent and writes a minimal config
// pointing at it.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"output": "Order #12345 has shipped."})
	}))
	t.Cleanup(agent.Close)

	cfg := fmt.Sprintf(`
agent:
  type: http
  endpoint: %s
  timeout_ms: 5000
golden_prompts:
  - "What is the status of order #12345?"
mutations:
  types: [paraphrase, noise]
  count_per_type: 2
  concurrency: 2
invariants:
  - type: contains
    value: shipped
output:
  format: terminal
`, agent.URL)

	path := filepath.Join(t.TempDir(), "flakestorm.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"run_storm":    false,
		"get_report":   false,
		"verify_setup": false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_RunStormAndGetReport(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	configPath := writeTestConfig(t)

	startResult := callTool(t, ctx, session, "run_storm", map[string]any{
		"config_path": configPath,
	})
	runID, ok := startResult["run_id"].(string)
	if !ok || runID == "" {
		t.Fatalf("expected non-empty run_id, got %v", startResult["run_id"])
	}
	if status, _ := startResult["status"].(string); status != "running" {
		t.Fatalf("status = %v, want running", startResult["status"])
	}

	reportResult := callTool(t, ctx, session, "get_report", map[string]any{
		"run_id":     runID,
		"timeout_ms": 20000,
	})
	if status, _ := reportResult["status"].(string); status != "done" {
		t.Fatalf("report status = %v, want done: %v", reportResult["status"], reportResult)
	}
	score, ok := reportResult["score"].(float64)
	if !ok {
		t.Fatalf("expected numeric score, got %v", reportResult["score"])
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0 for the echo agent", score)
	}
	// 1 prompt x 2 kinds x 2 per kind
	if total, _ := reportResult["total"].(float64); total != 4 {
		t.Errorf("total = %v, want 4", reportResult["total"])
	}
	summary, _ := reportResult["summary"].(string)
	if !strings.Contains(summary, "Robustness score") {
		t.Errorf("summary missing score line: %q", summary)
	}
}

func TestServer_GetReportUnknownRun(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	msg := callToolErr(t, ctx, session, "get_report", map[string]any{"run_id": "nope"})
	if !strings.Contains(msg, "run_storm") {
		t.Errorf("error should point at run_storm, got %q", msg)
	}
}

func TestServer_RunStormRejectsBadConfig(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  type: http\n"), 0644); err != nil {
		t.Fatal(err)
	}

	msg := callToolErr(t, ctx, session, "run_storm", map[string]any{"config_path": path})
	if !strings.Contains(msg, "invalid configuration") {
		t.Errorf("expected validation error, got %q", msg)
	}
}

func TestServer_SecondStormNeedsForce(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	configPath := writeTestConfig(t)
	callTool(t, ctx, session, "run_storm", map[string]any{"config_path": configPath})

	// The first run may or may not still be in flight; force always works.
	second := callTool(t, ctx, session, "run_storm", map[string]any{
		"config_path": configPath,
		"force":       true,
	})
	if second["run_id"] == "" {
		t.Fatal("force run_storm should return a new run_id")
	}
	if srv.RunID() != second["run_id"] {
		t.Errorf("server should track the new run, have %s", srv.RunID())
	}
}

func TestServer_VerifySetup(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	defer session.Close()

	configPath := writeTestConfig(t)
	out := callTool(t, ctx, session, "verify_setup", map[string]any{"config_path": configPath})
	if ok, _ := out["ok"].(string); ok == "" {
		t.Errorf("expected ok message, got %v", out)
	}
}
