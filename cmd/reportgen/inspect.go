package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regreport/internal/config"
	"regreport/internal/exporter"
	"regreport/internal/validation"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <report.docx>",
		Short: "Print the text of a generated report",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCmd,
	}
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	validator := validation.NewFileValidator(cliLogger(config.Default().Logging, cmd.ErrOrStderr()))
	if err := validator.ValidateReport(args[0]); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	doc, err := exporter.ReadDocument(data)
	if err != nil {
		return fmt.Errorf("not a readable report: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderDocument(doc.Paragraphs, doc.Tables))
	return nil
}
