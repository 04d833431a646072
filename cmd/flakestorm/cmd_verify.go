package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakestorm/internal/config"
	"flakestorm/internal/wiring"
)

var verifyFlags struct {
	configPath string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate the config and check that the model server is reachable",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyFlags.configPath, "config", "c", "flakestorm.yaml", "Path to the config file")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(verifyFlags.configPath)
	if err != nil {
		return err
	}
	pipeline, err := wiring.Build(cfg)
	if err != nil {
		return err
	}
	if err := pipeline.Verify(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "config valid")
	return nil
}
