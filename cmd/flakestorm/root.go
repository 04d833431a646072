// flakestorm is the chaos-testing CLI for AI agents: it mutates golden
// prompts, storms the agent with them, verifies invariants and reports a
// robustness score.
//
// Usage:
//
//	flakestorm init [--force] [--ci-workflow]
//	flakestorm run --config flakestorm.yaml [--min-score 0.9] [--ci]
//	flakestorm verify --config flakestorm.yaml
//	flakestorm score -f report.json
//	flakestorm report -f report.json [--format html] [-o report.html]
//	flakestorm serve
//	flakestorm limits
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flakestorm/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "flakestorm",
	Short: "Chaos testing for AI agents",
	Long: "flakestorm expands golden prompts into adversarial mutations, fires them\n" +
		"at your agent under bounded concurrency, checks declarative invariants\n" +
		"and aggregates a weighted robustness score.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
