package http

import (
	"context"
	"io"

	"regreport/internal/services"
)

// ReportServiceInterface defines the pipeline operations the handlers call
type ReportServiceInterface interface {
	Summary(ctx context.Context, r io.Reader, filename string) (*services.Analysis, error)
	Preview(ctx context.Context, r io.Reader, filename string) (*services.PreviewResult, error)
	Chart(ctx context.Context, r io.Reader, filename string) ([]byte, error)
	CourseCountsCSV(ctx context.Context, r io.Reader, filename string) ([]byte, error)
	BuildReport(ctx context.Context, r io.Reader, filename string) (*services.ReportArtifact, error)
}
