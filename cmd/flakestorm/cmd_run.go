package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakestorm/internal/config"
	"flakestorm/internal/format"
	"flakestorm/internal/orchestrate"
	"flakestorm/internal/report"
	"flakestorm/internal/wiring"
)

var runFlags struct {
	configPath string
	output     string
	outFormat  string
	minScore   float64
	ci         bool
	quiet      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Expand mutations, storm the agent and report a robustness score",
	Long: `Run loads the config, expands every golden prompt into mutations, invokes
the agent under bounded concurrency, evaluates the invariants and writes the
report in the configured format.

With --min-score the command exits non-zero when the score is below the
threshold, which is what --ci relies on to gate pull requests.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", "flakestorm.yaml", "Path to the config file")
	f.StringVarP(&runFlags.output, "output", "o", "", "Report path (overrides output.path)")
	f.StringVar(&runFlags.outFormat, "format", "", "Report format: html, json or terminal (overrides output.format)")
	f.Float64Var(&runFlags.minScore, "min-score", 0, "Fail when the score is below this threshold (0 = disabled)")
	f.BoolVar(&runFlags.ci, "ci", false, "CI mode: terse machine-friendly output")
	f.BoolVarP(&runFlags.quiet, "quiet", "q", false, "Suppress the terminal summary")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(runFlags.configPath)
	if err != nil {
		return err
	}

	run, err := wiring.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, cfg, run); err != nil {
		return err
	}

	if !runFlags.quiet && !runFlags.ci {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), report.Render(run))
	}
	if runFlags.ci {
		fmt.Fprintf(cmd.OutOrStdout(), "score=%s total=%d passed=%d failed=%d\n",
			format.Score(run.Score, run.Undefined()), run.Total, run.Passed, run.Failed)
	}

	return checkGate(run)
}

// writeReport persists the run in the effective format. Terminal format
// writes nothing; the summary is printed either way.
func writeReport(cmd *cobra.Command, cfg *config.Config, run *orchestrate.RunResult) error {
	outFormat := cfg.Output.Format
	if runFlags.outFormat != "" {
		outFormat = runFlags.outFormat
	}
	outPath := cfg.Output.Path
	if runFlags.output != "" {
		outPath = runFlags.output
	}

	switch outFormat {
	case "json":
		if outPath == "" {
			outPath = "flakestorm-report.json"
		}
		if err := report.SaveJSON(outPath, run); err != nil {
			return err
		}
	case "html":
		if outPath == "" {
			outPath = "flakestorm-report.html"
		}
		if err := report.SaveHTML(outPath, run); err != nil {
			return err
		}
	case "", "terminal":
		return nil
	default:
		return fmt.Errorf("unknown report format %q", outFormat)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outPath)
	return nil
}

func checkGate(run *orchestrate.RunResult) error {
	if runFlags.minScore <= 0 {
		return nil
	}
	if run.Undefined() {
		return fmt.Errorf("robustness score is undefined (no weighted mutations), below threshold %.2f", runFlags.minScore)
	}
	if run.Score < runFlags.minScore {
		return fmt.Errorf("robustness score %.4f below threshold %.2f", run.Score, runFlags.minScore)
	}
	return nil
}
