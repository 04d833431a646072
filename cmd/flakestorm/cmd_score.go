package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakestorm/internal/report"
)

var scoreFlags struct {
	input string
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the robustness score from a saved JSON report",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFlags.input, "file", "f", "flakestorm-report.json", "Saved JSON report")
}

func runScore(cmd *cobra.Command, _ []string) error {
	doc, err := report.LoadJSON(scoreFlags.input)
	if err != nil {
		return err
	}
	run := doc.Run()
	if run.Undefined() {
		return fmt.Errorf("robustness score is undefined: run produced no weighted mutations")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", run.Score)
	return nil
}
