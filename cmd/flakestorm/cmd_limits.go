package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakestorm/internal/config"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show the per-run limits",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "max mutations per run: %d\n", config.MaxMutationsPerRun)
		fmt.Fprintf(cmd.OutOrStdout(), "max golden prompts:    %d\n", config.MaxGoldenPrompts)
		fmt.Fprintln(cmd.OutOrStdout(), "oversized configs are capped, not rejected")
	},
}
