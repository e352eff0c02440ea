package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/webscan/internal/report"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report <run-file>",
	Short: "Re-render a persisted scan run in any output format",
	Long: `Render a scan run previously saved with 'webscan scan --save-run'
without touching the network. The persisted record round-trips every
finding, so offline reports match the original scan.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := report.ForFormat(reportFormat)
		if err != nil {
			return err
		}
		if reportFormat == report.FormatPDF && reportOutput == "" {
			return fmt.Errorf("pdf output requires --output")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open run file: %w", err)
		}
		defer f.Close()

		run, err := report.Load(f)
		if err != nil {
			return err
		}

		return writeReport(renderer, run, reportOutput)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", report.FormatText, "output format: "+strings.Join(report.Formats(), ", "))
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file instead of stdout")
}
