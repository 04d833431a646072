package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flakestorm/internal/config"
	"flakestorm/internal/invariant"
	"flakestorm/internal/orchestrate"
	"flakestorm/internal/report"
)

// execCLI runs the root command in-process with the given args.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flakestorm.yaml")

	out, err := execCLI(t, "init", "-o", path)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if err := cfg.Validate(invariant.NewRegistry()); err != nil {
		t.Fatalf("generated config does not validate: %v", err)
	}

	if _, err := execCLI(t, "init", "-o", path); err == nil {
		t.Fatal("second init without --force should fail")
	}
	if out, err := execCLI(t, "init", "-o", path, "--force"); err != nil {
		t.Fatalf("init --force: %v\n%s", err, out)
	}
}

func savedReport(t *testing.T) string {
	t.Helper()
	run := &orchestrate.RunResult{
		Score:       0.25,
		Total:       2,
		Passed:      1,
		Failed:      1,
		StartedAt:   time.Now().Add(-time.Second),
		CompletedAt: time.Now(),
	}
	path := filepath.Join(t.TempDir(), "report.json")
	if err := report.SaveJSON(path, run); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScoreCommand(t *testing.T) {
	path := savedReport(t)
	out, err := execCLI(t, "score", "-f", path)
	if err != nil {
		t.Fatalf("score: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0.2500") {
		t.Errorf("score output = %q, want 0.2500", out)
	}
}

func TestScoreCommandMissingFile(t *testing.T) {
	if _, err := execCLI(t, "score", "-f", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestReportCommandTerminal(t *testing.T) {
	path := savedReport(t)
	out, err := execCLI(t, "report", "-f", path, "--format", "terminal")
	if err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Robustness score") {
		t.Errorf("report output missing summary:\n%s", out)
	}
}

func TestReportCommandHTML(t *testing.T) {
	path := savedReport(t)
	htmlPath := filepath.Join(t.TempDir(), "report.html")
	out, err := execCLI(t, "report", "-f", path, "--format", "html", "-o", htmlPath)
	if err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Robustness Score") {
		t.Error("html report missing score section")
	}
}

func writeRunConfig(t *testing.T, mustContain string) string {
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
  types: [paraphrase]
  count_per_type: 2
  concurrency: 2
invariants:
  - type: contains
    value: %q
output:
  format: terminal
`, agent.URL, mustContain)

	path := filepath.Join(t.TempDir(), "flakestorm.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommandPassesGate(t *testing.T) {
	cfgPath := writeRunConfig(t, "shipped")
	out, err := execCLI(t, "run", "-c", cfgPath, "--min-score", "0.99", "--ci")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "score=100.0%") {
		t.Errorf("ci output = %q", out)
	}
}

func TestRunCommandFailsGate(t *testing.T) {
	cfgPath := writeRunConfig(t, "refund") // agent never says this
	out, err := execCLI(t, "run", "-c", cfgPath, "--min-score", "0.99", "--ci")
	if err == nil {
		t.Fatalf("run should fail the gate:\n%s", out)
	}
	if !strings.Contains(err.Error(), "below threshold") {
		t.Errorf("gate error = %v", err)
	}
}

func TestRunCommandWritesJSONReport(t *testing.T) {
	cfgPath := writeRunConfig(t, "shipped")
	outPath := filepath.Join(t.TempDir(), "out.json")
	out, err := execCLI(t, "run", "-c", cfgPath, "--min-score", "0", "--format", "json", "-o", outPath, "--quiet")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	doc, err := report.LoadJSON(outPath)
	if err != nil {
		t.Fatalf("saved report does not load: %v", err)
	}
	if doc.Total != 2 {
		t.Errorf("Total = %d, want 2", doc.Total)
	}
}
