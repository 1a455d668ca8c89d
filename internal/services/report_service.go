package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"regreport/internal/chart"
	"regreport/internal/config"
	"regreport/internal/dataprocessing"
	"regreport/internal/exporter"
	"regreport/internal/infrastructure"
	"regreport/pkg/contracts/domain"
)

// SpreadsheetParser loads and validates an uploaded spreadsheet
type SpreadsheetParser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*dataprocessing.Dataset, error)
}

// ChartRenderer draws the course aggregate
type ChartRenderer interface {
	Render(ctx context.Context, agg domain.CourseAggregate) ([]byte, error)
}

// DocumentComposer lays out the final report
type DocumentComposer interface {
	Compose(ctx context.Context, report domain.Report) ([]byte, error)
}

// DisplayMetrics are the headline figures shown above a preview
type DisplayMetrics struct {
	TotalRecords      int    `json:"total_records"`
	DetectedColumns   int    `json:"detected_columns"`
	UniqueCourses     int    `json:"unique_courses"`
	UniquePeople      int    `json:"unique_people"`
	FirstRegistration string `json:"first_registration"`
	LastRegistration  string `json:"last_registration"`
	TotalCourses      int    `json:"total_courses"`
}

// Analysis is a loaded and aggregated spreadsheet
type Analysis struct {
	Source      string                      `json:"source"`
	Metrics     DisplayMetrics              `json:"metrics"`
	Summary     domain.Summary              `json:"summary"`
	Courses     domain.CourseAggregate      `json:"courses"`
	Rosters     []domain.CourseRoster       `json:"rosters"`
	Preview     dataprocessing.Table        `json:"preview"`
	Dataset     *dataprocessing.Dataset     `json:"-"`
	Aggregation *dataprocessing.Aggregation `json:"-"`
}

// PreviewResult is an analysis plus its rendered chart
type PreviewResult struct {
	*Analysis
	Chart []byte `json:"-"`
}

// ReportArtifact is a generated document ready for download
type ReportArtifact struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	// Chart is the PNG embedded in Data.
	Chart       []byte
	GeneratedAt time.Time
	Analysis    *Analysis
}

// ReportServiceConfig wires a ReportService. Nil collaborators are
// replaced by the default implementations.
type ReportServiceConfig struct {
	Parser     SpreadsheetParser
	Analyzer   *dataprocessing.Analyzer
	Renderer   ChartRenderer
	Composer   DocumentComposer
	CSVWriter  *exporter.CSVWriter
	Metrics    *infrastructure.ReportMetrics
	Tracer     trace.Tracer
	Logger     *slog.Logger
	Display    dataprocessing.DisplayOptions
	Title      string
	PreparedBy string
	Location   *time.Location
	// Clock supplies the report generation time.
	Clock func() time.Time
}

// ReportService runs the registration pipeline: load, aggregate, chart and
// compose. Every call works on its own data, so one service can serve
// concurrent requests.
type ReportService struct {
	parser     SpreadsheetParser
	analyzer   *dataprocessing.Analyzer
	renderer   ChartRenderer
	composer   DocumentComposer
	csv        *exporter.CSVWriter
	metrics    *infrastructure.ReportMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
	display    dataprocessing.DisplayOptions
	title      string
	preparedBy string
	location   *time.Location
	clock      func() time.Time
}

// NewReportService creates a report service
func NewReportService(cfg ReportServiceConfig) *ReportService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &ReportService{
		parser:     cfg.Parser,
		analyzer:   cfg.Analyzer,
		renderer:   cfg.Renderer,
		composer:   cfg.Composer,
		csv:        cfg.CSVWriter,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		logger:     logger.With(slog.String("service", "report")),
		display:    cfg.Display,
		title:      cfg.Title,
		preparedBy: cfg.PreparedBy,
		location:   loc,
		clock:      cfg.Clock,
	}

	if s.parser == nil {
		s.parser = dataprocessing.NewParser(logger, dataprocessing.ParserOptions{Location: loc})
	}
	if s.analyzer == nil {
		s.analyzer = dataprocessing.NewAnalyzer(logger)
	}
	if s.renderer == nil {
		s.renderer = chart.NewRenderer(logger, chart.DefaultOptions())
	}
	if s.composer == nil {
		s.composer = exporter.NewReportComposer(logger, exporter.ComposerOptions{Location: loc})
	}
	if s.csv == nil {
		s.csv = exporter.NewCSVWriter(logger)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(infrastructure.ServiceName)
	}
	if s.title == "" {
		s.title = config.DefaultReportTitle
	}
	if s.preparedBy == "" {
		s.preparedBy = config.DefaultPreparedBy
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// NewReportServiceFromConfig builds the pipeline from application configuration.
func NewReportServiceFromConfig(cfg *config.Config, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	loc := cfg.Location()
	return NewReportService(ReportServiceConfig{
		Parser:   dataprocessing.NewParser(logger, dataprocessing.ParserOptions{Location: loc}),
		Renderer: chart.NewRenderer(logger, chart.OptionsFromConfig(cfg.Report)),
		Composer: exporter.NewReportComposer(logger, exporter.ComposerOptions{
			ImageWidthInches: cfg.Report.ImageWidthInches,
			Location:         loc,
		}),
		Metrics: metrics,
		Logger:  logger,
		Display: dataprocessing.DisplayOptions{
			PreviewRows: cfg.Display.PreviewRows,
			MaxColumns:  cfg.Display.MaxColumns,
		},
		Title:      cfg.Report.Title,
		PreparedBy: cfg.Report.PreparedBy,
		Location:   loc,
	})
}

// Summary loads and aggregates a spreadsheet.
func (s *ReportService) Summary(ctx context.Context, r io.Reader, filename string) (*Analysis, error) {
	var analysis *Analysis
	err := s.run(ctx, "summary", filename, func(ctx context.Context) error {
		var err error
		analysis, err = s.analyze(ctx, r, filename)
		return err
	})
	return analysis, err
}

// Preview loads, aggregates and charts a spreadsheet for on-screen display.
func (s *ReportService) Preview(ctx context.Context, r io.Reader, filename string) (*PreviewResult, error) {
	var result *PreviewResult
	err := s.run(ctx, "preview", filename, func(ctx context.Context) error {
		analysis, err := s.analyze(ctx, r, filename)
		if err != nil {
			return err
		}
		png, err := s.renderChart(ctx, analysis.Courses)
		if err != nil {
			return err
		}
		result = &PreviewResult{Analysis: analysis, Chart: png}
		return nil
	})
	return result, err
}

// Chart renders only the course chart of a spreadsheet.
func (s *ReportService) Chart(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	var png []byte
	err := s.run(ctx, "chart", filename, func(ctx context.Context) error {
		analysis, err := s.analyze(ctx, r, filename)
		if err != nil {
			return err
		}
		png, err = s.renderChart(ctx, analysis.Courses)
		return err
	})
	return png, err
}

// CourseCountsCSV exports the course aggregate of a spreadsheet as CSV.
func (s *ReportService) CourseCountsCSV(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	var out []byte
	err := s.run(ctx, "course_counts", filename, func(ctx context.Context) error {
		analysis, err := s.analyze(ctx, r, filename)
		if err != nil {
			return err
		}
		return s.stage(ctx, StageExport, func(ctx context.Context) error {
			var buf bytes.Buffer
			if err := s.csv.WriteCourseCounts(&buf, analysis.Courses); err != nil {
				return err
			}
			out = buf.Bytes()
			return nil
		})
	})
	return out, err
}

// BuildReport runs the whole pipeline and returns the .docx artifact.
func (s *ReportService) BuildReport(ctx context.Context, r io.Reader, filename string) (*ReportArtifact, error) {
	var artifact *ReportArtifact
	err := s.run(ctx, "report", filename, func(ctx context.Context) error {
		analysis, err := s.analyze(ctx, r, filename)
		if err != nil {
			return err
		}
		png, err := s.renderChart(ctx, analysis.Courses)
		if err != nil {
			return err
		}

		generated := s.clock()
		report := domain.Report{
			ID:          uuid.NewString(),
			Title:       s.title,
			PreparedBy:  s.preparedBy,
			Summary:     analysis.Summary,
			Courses:     analysis.Courses,
			Rosters:     analysis.Rosters,
			Chart:       png,
			GeneratedAt: generated,
		}

		var doc []byte
		err = s.stage(ctx, StageCompose, func(ctx context.Context) error {
			var err error
			doc, err = s.composer.Compose(ctx, report)
			return err
		})
		if err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.DocumentBytes.Record(ctx, int64(len(doc)))
		}

		artifact = &ReportArtifact{
			ID:          report.ID,
			Filename:    exporter.ReportFilename(generated.In(s.location)),
			ContentType: exporter.DocxContentType,
			Data:        doc,
			Chart:       png,
			GeneratedAt: generated,
			Analysis:    analysis,
		}
		return nil
	})
	return artifact, err
}

func (s *ReportService) analyze(ctx context.Context, r io.Reader, filename string) (*Analysis, error) {
	var ds *dataprocessing.Dataset
	err := s.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		ds, err = s.parser.Parse(ctx, r, filename)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordsIngested.Add(ctx, int64(ds.RowCount()))
	}

	var agg *dataprocessing.Aggregation
	err = s.stage(ctx, StageAggregate, func(ctx context.Context) error {
		var err error
		agg, err = s.analyzer.Aggregate(ctx, ds.Registrations)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Source:      ds.Source,
		Metrics:     displayMetrics(ds, agg),
		Summary:     agg.Summary,
		Courses:     agg.Courses,
		Rosters:     agg.Rosters,
		Preview:     ds.Preview(s.display),
		Dataset:     ds,
		Aggregation: agg,
	}, nil
}

func (s *ReportService) renderChart(ctx context.Context, agg domain.CourseAggregate) ([]byte, error) {
	var png []byte
	err := s.stage(ctx, StageChart, func(ctx context.Context) error {
		var err error
		png, err = s.renderer.Render(ctx, agg)
		return err
	})
	return png, err
}

// stage runs fn inside a span and records its duration. Errors are
// classified here so the stage name stays attached to unexpected failures.
func (s *ReportService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "pipeline."+name,
		trace.WithAttributes(attribute.String("pipeline.stage", name)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := classify(name, fn(ctx))
	s.metrics.RecordStage(ctx, name, time.Since(start), err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

func (s *ReportService) run(ctx context.Context, operation, filename string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "pipeline."+operation,
		trace.WithAttributes(attribute.String("file.name", filename)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	kind := ErrorKind(err)
	s.metrics.RecordRun(ctx, operation, kind)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "pipeline failed",
			slog.String("operation", operation),
			slog.String("file", filename),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return err
	}

	s.logger.InfoContext(ctx, "pipeline completed",
		slog.String("operation", operation),
		slog.String("file", filename),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func displayMetrics(ds *dataprocessing.Dataset, agg *dataprocessing.Aggregation) DisplayMetrics {
	return DisplayMetrics{
		TotalRecords:      ds.RowCount(),
		DetectedColumns:   ds.ColumnCount(),
		UniqueCourses:     agg.UniqueCourses(),
		UniquePeople:      agg.Summary.UniquePeople,
		FirstRegistration: exporter.FormatDate(agg.Summary.Earliest),
		LastRegistration:  exporter.FormatDate(agg.Summary.Latest),
		TotalCourses:      len(agg.Courses),
	}
}
