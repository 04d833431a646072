package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"flakestorm/internal/config"
	"flakestorm/internal/report"
)

var initFlags struct {
	path       string
	force      bool
	ciWorkflow bool
	minScore   float64
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter flakestorm.yaml configuration",
	RunE:  runInit,
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initFlags.path, "output", "o", "flakestorm.yaml", "Where to write the config")
	f.BoolVar(&initFlags.force, "force", false, "Overwrite an existing config")
	f.BoolVar(&initFlags.ciWorkflow, "ci-workflow", false, "Also write a GitHub Actions workflow gating on the robustness score")
	f.Float64Var(&initFlags.minScore, "min-score", 0.9, "Minimum passing score for the CI workflow")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := config.WriteDefault(initFlags.path, initFlags.force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", initFlags.path)

	if initFlags.ciWorkflow {
		wfPath := filepath.Join(".github", "workflows", "flakestorm.yml")
		if err := report.WriteWorkflow(wfPath, initFlags.path, initFlags.minScore); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", wfPath)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "edit the config to point at your agent, then: flakestorm run")
	return nil
}
