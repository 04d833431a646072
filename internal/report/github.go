package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// workflowTemplate is the GitHub Actions workflow written by
// `flakestorm init --ci-workflow`. It gates pull requests on the
// robustness score via `flakestorm run --ci`.
const workflowTemplate = `name: Agent Robustness Check

on:
  push:
    branches: [main]
  pull_request:
    branches: [main]

jobs:
  robustness:
    runs-on: ubuntu-latest

    steps:
      - uses: actions/checkout@v4

      - uses: actions/setup-go@v5
        with:
          go-version: '1.24'

      # Point this at wherever your agent is served in CI, or start it
      # in a previous step.
      - name: Run flakestorm
        run: |
          flakestorm run \
            --config %s \
            --min-score %.2f \
            --ci
`

// WorkflowYAML renders the CI workflow for the given config path and
// minimum passing score.
func WorkflowYAML(configPath string, minScore float64) string {
	return fmt.Sprintf(workflowTemplate, configPath, minScore)
}

// WriteWorkflow writes the CI workflow under .github/workflows, creating
// directories as needed.
func WriteWorkflow(path, configPath string, minScore float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create workflow dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(WorkflowYAML(configPath, minScore)), 0644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}
