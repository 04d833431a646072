package report

import (
	"fmt"
	"sort"
	"strings"

	"flakestorm/internal/display"
	"flakestorm/internal/format"
	"flakestorm/internal/orchestrate"
)

// Summary is the short one-screen digest printed after every run.
func Summary(run *orchestrate.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Robustness score: %s\n", format.Score(run.Score, run.Undefined()))
	fmt.Fprintf(&b, "Mutations: %d total, %d passed, %d failed\n", run.Total, run.Passed, run.Failed)
	fmt.Fprintf(&b, "Duration: %s", format.Duration(run.Duration()))
	if run.Latency.P95MS > 0 {
		fmt.Fprintf(&b, "  (avg %s, p95 %s)", format.Millis(run.Latency.AvgMS), format.Millis(run.Latency.P95MS))
	}
	b.WriteString("\n")
	return b.String()
}

// Render produces the full terminal report with per-kind and failure tables.
func Render(run *orchestrate.RunResult) string {
	var b strings.Builder

	b.WriteString(Summary(run))

	if len(run.ByKind) > 0 {
		b.WriteString("\nBy mutation kind:\n")
		tb := format.NewTable(format.ASCII)
		tb.Header("Kind", "Total", "Passed", "Rate")
		for _, ks := range run.ByKind {
			rate := "n/a"
			if ks.Total > 0 {
				rate = fmt.Sprintf("%.0f%%", 100*float64(ks.Passed)/float64(ks.Total))
			}
			tb.Row(display.MutationKind(string(ks.Kind)), ks.Total, ks.Passed, rate)
		}
		tb.Columns(
			format.ColumnConfig{Number: 2, Right: true},
			format.ColumnConfig{Number: 3, Right: true},
			format.ColumnConfig{Number: 4, Right: true},
		)
		b.WriteString(tb.String())
		b.WriteString("\n")
	}

	if len(run.FailedByCategory) > 0 {
		b.WriteString("\nFailures by category:\n")
		tb := format.NewTable(format.ASCII)
		tb.Header("Category", "Count")
		for _, key := range sortedKeys(run.FailedByCategory) {
			tb.Row(display.FailureCategory(key), run.FailedByCategory[key])
		}
		tb.Columns(format.ColumnConfig{Number: 2, Right: true})
		b.WriteString(tb.String())
		b.WriteString("\n")
	}

	failed := failedResults(run)
	if len(failed) > 0 {
		b.WriteString("\nFailed mutations:\n")
		tb := format.NewTable(format.ASCII)
		tb.Header("Kind", "Mutation", "Error", "Failed Checks")
		for _, r := range failed {
			tb.Row(
				display.MutationKind(string(r.Mutation.Kind)),
				format.Truncate(r.Mutation.Text, 60),
				display.ErrorKind(string(r.Outcome.Error)),
				strings.Join(failedChecks(r), ", "),
			)
		}
		tb.Columns(format.ColumnConfig{Number: 2, MaxWidth: 60})
		b.WriteString(tb.String())
		b.WriteString("\n")
	}

	return b.String()
}

func failedResults(run *orchestrate.RunResult) []orchestrate.MutationResult {
	var out []orchestrate.MutationResult
	for _, r := range run.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func failedChecks(r orchestrate.MutationResult) []string {
	var out []string
	for _, v := range r.Verdicts {
		if !v.Passed {
			out = append(out, v.Invariant)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
