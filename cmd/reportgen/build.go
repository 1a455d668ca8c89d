package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"regreport/internal/exporter"
	"regreport/internal/files"
)

var (
	buildOutDir  string
	buildChart   bool
	buildCSV     bool
	buildRosters bool
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <spreadsheet>",
		Short: "Generate the Word report for a registration sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuildCmd,
	}
	cmd.Flags().StringVarP(&buildOutDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&buildChart, "chart", false, "also write the course chart as PNG")
	cmd.Flags().BoolVar(&buildCSV, "csv", false, "also write course counts as CSV")
	cmd.Flags().BoolVar(&buildRosters, "rosters", false, "also write per-course attendee lists as CSV")
	return cmd
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := p.validator.ValidateOutputDirectory(buildOutDir); err != nil {
		return err
	}

	in, err := p.openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	ctx := cmd.Context()
	artifact, err := p.service.BuildReport(ctx, in, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	fm := files.NewManager(buildOutDir, p.logger)
	written := make([]string, 0, 4)

	path, err := fm.WriteFile(artifact.Filename, artifact.Data)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	written = append(written, path)

	base := strings.TrimSuffix(artifact.Filename, filepath.Ext(artifact.Filename))
	analysis := artifact.Analysis

	if buildChart {
		if path, err = fm.WriteFile(base+".png", artifact.Chart); err != nil {
			return fmt.Errorf("failed to save chart: %w", err)
		}
		written = append(written, path)
	}

	csvWriter := exporter.NewCSVWriter(p.logger)
	if buildCSV {
		var buf bytes.Buffer
		if err := csvWriter.WriteCourseCounts(&buf, analysis.Courses); err != nil {
			return err
		}
		if path, err = fm.WriteFile(base+"_cursos.csv", buf.Bytes()); err != nil {
			return fmt.Errorf("failed to save course counts: %w", err)
		}
		written = append(written, path)
	}
	if buildRosters {
		var buf bytes.Buffer
		if err := csvWriter.WriteRosters(&buf, analysis.Rosters); err != nil {
			return err
		}
		if path, err = fm.WriteFile(base+"_inscritos.csv", buf.Bytes()); err != nil {
			return fmt.Errorf("failed to save rosters: %w", err)
		}
		written = append(written, path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, okStyle.Render("✓ Reporte generado"))
	fmt.Fprintf(out, "%s %d registros, %d cursos\n",
		mutedStyle.Render("  "+analysis.Source+":"),
		analysis.Metrics.TotalRecords, analysis.Metrics.UniqueCourses)
	for _, w := range written {
		fmt.Fprintln(out, "  "+w)
	}
	return nil
}
