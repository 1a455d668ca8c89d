package chart

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"regreport/internal/config"
	"regreport/pkg/contracts/domain"
)

// Labels drawn on the chart
const (
	Title  = "Inscripciones por Curso"
	XLabel = "Curso"
	YLabel = "Cantidad de Inscritos"
)

var (
	barFill   = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	barEdge   = color.RGBA{R: 0, G: 0, B: 128, A: 255}     // navy
	edgeWidth = vg.Points(1.2)
)

// Options fixes the output size
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          int
}

// OptionsFromConfig reads chart size from the report configuration
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		WidthInches:  cfg.ChartWidthInches,
		HeightInches: cfg.ChartHeightInches,
		DPI:          cfg.ChartDPI,
	}
}

// DefaultOptions returns 12x8 inches at 100 dpi
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Report)
}

// Renderer draws course aggregates as a vertical bar chart
type Renderer struct {
	logger *slog.Logger
	opts   Options
}

// NewRenderer creates a renderer. Zero options fall back to the defaults.
func NewRenderer(logger *slog.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.WidthInches <= 0 {
		opts.WidthInches = def.WidthInches
	}
	if opts.HeightInches <= 0 {
		opts.HeightInches = def.HeightInches
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	return &Renderer{
		logger: logger.With(slog.String("component", "chart")),
		opts:   opts,
	}
}

// Options returns the effective rendering options
func (r *Renderer) Options() Options {
	return r.opts
}

// Render draws one bar per course in aggregate order, each annotated with
// its count, and returns the PNG encoding. An empty aggregate yields the
// titled axes without bars.
func (r *Renderer) Render(ctx context.Context, agg domain.CourseAggregate) ([]byte, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Y.Min = 0

	if len(agg) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
		p.X.Tick.Marker = plot.ConstantTicks(nil)
	} else if err := r.addBars(p, agg); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	r.logger.DebugContext(ctx, "chart rendered",
		slog.Int("bars", len(agg)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *Renderer) addBars(p *plot.Plot, agg domain.CourseAggregate) error {
	values := make(plotter.Values, len(agg))
	points := make(plotter.XYs, len(agg))
	labels := make([]string, len(agg))
	maxCount := 0
	for i, c := range agg {
		values[i] = float64(c.Count)
		points[i] = plotter.XY{X: float64(i), Y: float64(c.Count)}
		labels[i] = strconv.Itoa(c.Count)
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	barWidth := vg.Length(r.opts.WidthInches) * vg.Inch * 0.6 / vg.Length(len(agg))
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = barFill
	bars.LineStyle.Color = barEdge
	bars.LineStyle.Width = edgeWidth

	counts, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return fmt.Errorf("failed to build count labels: %w", err)
	}
	counts.Offset = vg.Point{Y: vg.Points(4)}
	for i := range counts.TextStyle {
		counts.TextStyle[i].XAlign = draw.XCenter
	}

	p.Add(bars, counts)
	p.NominalX(agg.Courses()...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	// Headroom so the count above the tallest bar stays inside the plot.
	p.Y.Max = math.Max(1, float64(maxCount)*1.15)

	return nil
}
