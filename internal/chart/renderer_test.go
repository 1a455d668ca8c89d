package chart

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regreport/internal/shared/testutil"
	"regreport/pkg/contracts/domain"
)

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name string
		agg  domain.CourseAggregate
	}{
		{
			name: "two courses",
			agg: domain.CourseAggregate{
				{Course: "Python Básico", Count: 2},
				{Course: "Excel Avanzado", Count: 1},
			},
		},
		{
			name: "single course",
			agg:  domain.CourseAggregate{{Course: "Redes", Count: 14}},
		},
		{
			name: "empty aggregate renders labeled axes",
			agg:  domain.CourseAggregate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			r := NewRenderer(logger, Options{WidthInches: 6, HeightInches: 4, DPI: 50})

			data, err := r.Render(context.Background(), tt.agg)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 300, cfg.Width)
			assert.Equal(t, 200, cfg.Height)
		})
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	agg := domain.CourseAggregate{
		{Course: "Python Básico", Count: 3},
		{Course: "Bases de Datos", Count: 2},
		{Course: "Excel Avanzado", Count: 2},
	}
	r := NewRenderer(nil, Options{WidthInches: 4, HeightInches: 3, DPI: 60})

	first, err := r.Render(context.Background(), agg)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), agg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderer_DrawsBars(t *testing.T) {
	r := NewRenderer(nil, Options{WidthInches: 4, HeightInches: 3, DPI: 60})

	withBars, err := r.Render(context.Background(), domain.CourseAggregate{{Course: "Python Básico", Count: 5}})
	require.NoError(t, err)
	empty, err := r.Render(context.Background(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, withBars, empty)

	img, err := png.Decode(bytes.NewReader(withBars))
	require.NoError(t, err)
	assert.True(t, containsColor(img, barFill), "bar fill color present")
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(nil, Options{})
	assert.Equal(t, DefaultOptions(), r.Options())
	assert.Equal(t, Options{WidthInches: 12, HeightInches: 8, DPI: 100}, r.Options())
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(nil, Options{}).Render(ctx, domain.CourseAggregate{{Course: "A", Count: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func containsColor(img image.Image, want interface{ RGBA() (r, g, b, a uint32) }) bool {
	wr, wg, wb, _ := want.RGBA()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == wr && g == wg && b == wb {
				return true
			}
		}
	}
	return false
}
