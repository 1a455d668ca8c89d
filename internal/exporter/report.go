package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/stypes"

	"regreport/internal/config"
	"regreport/pkg/contracts/domain"
)

// DocxContentType is the MIME type of a generated report
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Section headings and table labels of the report
const (
	HeadingSummary      = "Resumen General"
	HeadingDistribution = "Distribución de Inscripciones por Curso"
	HeadingRosters      = "Detalle de Inscritos por Curso"
	RosterNameHeader    = "Nombre y Apellidos"
	RosterEmailHeader   = "Correo de Contacto"
)

// DocumentAssemblyError reports which part of the document could not be built.
type DocumentAssemblyError struct {
	Part string
	Err  error
}

func (e *DocumentAssemblyError) Error() string {
	return fmt.Sprintf("document assembly failed at %s: %v", e.Part, e.Err)
}

func (e *DocumentAssemblyError) Unwrap() error {
	return e.Err
}

// ComposerOptions configures document layout
type ComposerOptions struct {
	// ImageWidthInches is the width of the embedded chart.
	ImageWidthInches float64
	// Location used to print the generation date.
	Location *time.Location
}

// ReportComposer lays out a report as a Word document
type ReportComposer struct {
	logger *slog.Logger
	opts   ComposerOptions
}

// NewReportComposer creates a composer. Zero options fall back to defaults.
func NewReportComposer(logger *slog.Logger, opts ComposerOptions) *ReportComposer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ImageWidthInches <= 0 {
		opts.ImageWidthInches = config.Default().Report.ImageWidthInches
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ReportComposer{
		logger: logger.With(slog.String("component", "composer")),
		opts:   opts,
	}
}

// Compose renders report into .docx bytes. The output depends only on
// report, so the same input always yields the same bytes.
func (c *ReportComposer) Compose(ctx context.Context, report domain.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := report.Title
	if title == "" {
		title = config.DefaultReportTitle
	}
	preparedBy := report.PreparedBy
	if preparedBy == "" {
		preparedBy = config.DefaultPreparedBy
	}
	generated := report.GeneratedAt.In(c.opts.Location)

	doc, err := newDocument()
	if err != nil {
		return nil, &DocumentAssemblyError{Part: "template", Err: err}
	}

	if err := addHeading(doc, title, 0, stypes.JustificationCenter); err != nil {
		return nil, err
	}
	doc.AddParagraph("Fecha de elaboración: " + FormatDate(generated)).Justification(stypes.JustificationRight)
	doc.AddParagraph("Elaborado por: " + preparedBy).Justification(stypes.JustificationRight)

	if err := addHeading(doc, HeadingSummary, 1, ""); err != nil {
		return nil, err
	}
	for _, line := range SummaryLines(report.Summary) {
		doc.AddParagraph(line)
	}

	if err := addHeading(doc, HeadingDistribution, 1, ""); err != nil {
		return nil, err
	}
	if err := addChart(doc, report.Chart, c.opts.ImageWidthInches); err != nil {
		return nil, &DocumentAssemblyError{Part: "chart", Err: err}
	}

	if err := addHeading(doc, HeadingRosters, 1, ""); err != nil {
		return nil, err
	}
	for _, roster := range report.Rosters {
		if err := addHeading(doc, "Curso: "+roster.Course, 2, ""); err != nil {
			return nil, err
		}
		doc.AddParagraph(fmt.Sprintf("Total de inscritos: %d", roster.Size()))

		rows := make([][]string, len(roster.Entries))
		for i, e := range roster.Entries {
			rows[i] = []string{e.FullName, e.ContactEmail}
		}
		addRosterTable(doc, []string{RosterNameHeader, RosterEmailHeader}, rows)
		doc.AddEmptyParagraph()
	}

	err = setCoreProperties(doc, CoreProperties{
		Title:   title,
		Creator: preparedBy,
		Created: report.GeneratedAt,
	})
	if err != nil {
		return nil, &DocumentAssemblyError{Part: "properties", Err: err}
	}

	out, err := encodeDocument(doc)
	if err != nil {
		return nil, &DocumentAssemblyError{Part: "package", Err: err}
	}

	c.logger.InfoContext(ctx, "report composed",
		slog.String("report_id", report.ID),
		slog.Int("courses", len(report.Rosters)),
		slog.Int("bytes", len(out)))

	return out, nil
}

func addHeading(doc *docx.RootDoc, text string, level uint, align stypes.Justification) error {
	p, err := doc.AddHeading(text, level)
	if err != nil {
		return &DocumentAssemblyError{Part: "heading", Err: err}
	}
	if align != "" {
		p.Justification(align)
	}
	return nil
}

// SummaryLines returns the three summary sentences of the report
func SummaryLines(s domain.Summary) []string {
	return []string{
		fmt.Sprintf("Total de personas inscritas (valores únicos): %d", s.UniquePeople),
		"Fecha de inicio de inscripciones: " + FormatDateTime(s.Earliest),
		"Fecha de finalización de inscripciones: " + FormatDateTime(s.Latest),
	}
}

// ReportFilename returns the download name for a report generated at t
func ReportFilename(t time.Time) string {
	return "reporte_inscripciones_" + t.Format("20060102_150405") + ".docx"
}
