package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"regreport/internal/dataprocessing"
	"regreport/internal/services"
	"regreport/pkg/contracts/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerCell     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bodyCell       = lipgloss.NewStyle().Padding(0, 1)
	numberCell     = bodyCell.Align(lipgloss.Right)
)

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

// renderAnalysis lays out the metric cards, the course counts and
// optionally the data preview.
func renderAnalysis(a *services.Analysis, withPreview bool) string {
	m := a.Metrics
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Total de registros", strconv.Itoa(m.TotalRecords)),
		metricCard("Columnas detectadas", strconv.Itoa(m.DetectedColumns)),
		metricCard("Cursos únicos", strconv.Itoa(m.UniqueCourses)),
	)
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Personas únicas", strconv.Itoa(m.UniquePeople)),
		metricCard("Primera inscripción", m.FirstRegistration),
		metricCard("Última inscripción", m.LastRegistration),
	)

	parts := []string{
		titleStyle.Render("Vista previa: " + a.Source),
		cards,
		summary,
		titleStyle.Render("Inscripciones por curso"),
		courseTable(a.Courses),
	}
	if withPreview {
		parts = append(parts, titleStyle.Render("Datos"), previewTable(a.Preview))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func courseTable(agg domain.CourseAggregate) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Curso", "Inscritos").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case col == 1:
				return numberCell
			default:
				return bodyCell
			}
		})
	for _, c := range agg {
		t.Row(c.Course, strconv.Itoa(c.Count))
	}
	return t.Render()
}

func previewTable(p dataprocessing.Table) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(p.Columns...).
		Rows(p.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})

	out := t.Render()
	if p.Truncated {
		out += "\n" + mutedStyle.Render("Mostrando "+strconv.Itoa(len(p.Rows))+" de "+strconv.Itoa(p.TotalRows)+" filas")
	}
	return out
}

// renderDocument prints paragraphs followed by each table, one row per line
func renderDocument(paragraphs []string, tables [][][]string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	for i, rows := range tables {
		b.WriteString(mutedStyle.Render("Tabla " + strconv.Itoa(i+1)))
		b.WriteByte('\n')
		for _, row := range rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
	}
	return b.String()
}
