package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakestorm/internal/report"
)

var reportFlags struct {
	input     string
	outFormat string
	output    string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-render a saved JSON report as terminal text or HTML",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.input, "file", "f", "flakestorm-report.json", "Saved JSON report")
	f.StringVar(&reportFlags.outFormat, "format", "terminal", "Output format: terminal or html")
	f.StringVarP(&reportFlags.output, "output", "o", "", "Output path (html format only, default flakestorm-report.html)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	doc, err := report.LoadJSON(reportFlags.input)
	if err != nil {
		return err
	}
	run := doc.Run()

	switch reportFlags.outFormat {
	case "terminal":
		fmt.Fprint(cmd.OutOrStdout(), report.Render(run))
		return nil
	case "html":
		path := reportFlags.output
		if path == "" {
			path = "flakestorm-report.html"
		}
		if err := report.SaveHTML(path, run); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown report format %q (want terminal or html)", reportFlags.outFormat)
	}
}
