// Package main provides the reportgen CLI, which runs the registration
// report pipeline against local spreadsheet files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"regreport/internal/config"
	"regreport/internal/infrastructure"
	"regreport/internal/services"
	"regreport/internal/validation"
	"regreport/pkg/contracts"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reportgen",
		Short:         "Generate course registration reports from spreadsheets",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(contracts.GetVersionString() + "\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// pipeline is the configured service plus what the commands need around it
type pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	service   *services.ReportService
	validator *validation.FileValidator
}

func newPipeline(stderr io.Writer) (*pipeline, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := cliLogger(cfg.Logging, stderr)

	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		service:   services.NewReportServiceFromConfig(cfg, nil, logger),
		validator: validation.NewFileValidator(logger),
	}, nil
}

// cliLogger writes text logs to stderr, errors only unless --verbose is set
func cliLogger(cfg config.LoggingConfig, stderr io.Writer) *slog.Logger {
	cfg.Output = "console"
	cfg.Format = "text"
	if verbose {
		cfg.Level = "debug"
	} else {
		cfg.Level = "error"
	}
	return infrastructure.NewLogger(cfg, stderr)
}

// openInput checks and opens a spreadsheet given on the command line.
// The upload limit of the web server applies here too.
func (p *pipeline) openInput(path string) (*os.File, error) {
	if err := p.validator.ValidateSpreadsheet(path, p.cfg.MaxUploadBytes()); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// reportError prints err with its user hint, if any
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
	if hint := services.UserHint(err); hint != "" {
		fmt.Fprintln(w, mutedStyle.Render(hint))
	}
}
