package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"regreport/internal/dataprocessing"
)

var (
	summaryJSON    bool
	summaryPreview bool
	summaryRows    int
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <spreadsheet>",
		Short: "Print registration metrics and course counts",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummaryCmd,
	}
	cmd.Flags().BoolVar(&summaryJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&summaryPreview, "preview", false, "include the first rows of the sheet")
	cmd.Flags().IntVar(&summaryRows, "rows", -1, "preview rows (default from config)")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	in, err := p.openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	analysis, err := p.service.Summary(cmd.Context(), in, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("rows") {
		if summaryRows < 0 {
			return fmt.Errorf("--rows must not be negative")
		}
		analysis.Preview = analysis.Dataset.Preview(dataprocessing.DisplayOptions{
			PreviewRows: summaryRows,
			MaxColumns:  p.cfg.Display.MaxColumns,
		})
	}

	out := cmd.OutOrStdout()
	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Fprintln(out, renderAnalysis(analysis, summaryPreview))
	return nil
}
