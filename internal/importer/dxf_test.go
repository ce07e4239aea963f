package importer

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/shapes"
)

func writeDrawing(t *testing.T, build func(d *drawing.Drawing)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablet.dxf")
	d := dxf.NewDrawing()
	build(d)
	require.NoError(t, d.SaveAs(path))
	return path
}

func TestImportDXF_CircleCentredAndClosed(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.Circle(50, 40, 0, 6)
		require.NoError(t, err)
	})

	result := ImportDXF(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Outlines, 1)

	o := result.Outlines[0]
	assert.True(t, o.IsClosed())
	assert.Equal(t, 64, o.Segments())
	assert.Greater(t, o.SignedArea(), 0.0)

	min, max := o.BoundingBox()
	assert.InDelta(t, -6, min.X, 1e-9)
	assert.InDelta(t, 6, max.X, 1e-9)
	assert.InDelta(t, 0, (min.Y+max.Y)/2, 1e-9)
}

func TestImportDXF_ChainedLines(t *testing.T) {
	// Clockwise rectangle drawn as four loose lines.
	path := writeDrawing(t, func(d *drawing.Drawing) {
		for _, l := range [][4]float64{{0, 0, 0, 8}, {0, 8, 14, 8}, {14, 8, 14, 0}, {14, 0, 0, 0}} {
			_, err := d.Line(l[0], l[1], 0, l[2], l[3], 0)
			require.NoError(t, err)
		}
	})

	result := ImportDXF(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Outlines, 1)

	o := result.Outlines[0]
	assert.True(t, o.IsClosed())
	assert.Equal(t, 4, o.Segments())
	assert.InDelta(t, 14*8, o.SignedArea(), 1e-9, "rewound counter-clockwise")
	assert.InDelta(t, 44, o.Perimeter(), 1e-9)

	// Usable as a custom tablet shape.
	got, err := shapes.OutlineFor(model.ShapeCustom, model.ShapeParams{Custom: o})
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestImportDXF_LargestFirst(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.Circle(0, 0, 0, 3)
		require.NoError(t, err)
		_, err = d.Circle(20, 0, 0, 7)
		require.NoError(t, err)
	})

	result := ImportDXF(path)
	require.Len(t, result.Outlines, 2)
	_, max := result.Outlines[0].BoundingBox()
	assert.InDelta(t, 7, max.X, 1e-9)
}

func TestImportDXF_OpenChainRejected(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.Line(0, 0, 0, 10, 0, 0)
		require.NoError(t, err)
		_, err = d.Line(10, 0, 0, 10, 5, 0)
		require.NoError(t, err)
	})

	result := ImportDXF(path)
	assert.Empty(t, result.Outlines)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line chain does not close")

	_, _, err := LoadCrossSection(path, model.DefaultSettings(), 1)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestImportDXF_OpenPolylineRejected(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.LwPolyline(false, []float64{0, 0}, []float64{10, 0}, []float64{10, 10}, []float64{0, 10})
		require.NoError(t, err)
		_, err = d.Circle(30, 0, 0, 5)
		require.NoError(t, err)
	})

	result := ImportDXF(path)
	require.Len(t, result.Outlines, 1, "the circle still imports")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "polyline is not closed")

	_, _, err := LoadCrossSection(path, model.DefaultSettings(), 1)
	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "dxf contour", cfgErr.Field)
	assert.Equal(t, "at (0.000, 10.000)", cfgErr.Value)
}

func TestImportDXF_ClosedPolyline(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.LwPolyline(true, []float64{0, 0}, []float64{10, 0}, []float64{10, 6}, []float64{0, 6})
		require.NoError(t, err)
	})

	result := ImportDXF(path)
	require.Empty(t, result.Errors)
	require.Len(t, result.Outlines, 1)
	assert.Equal(t, 4, result.Outlines[0].Segments())
	assert.InDelta(t, 60, result.Outlines[0].SignedArea(), 1e-9)
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/tablet.dxf")
	assert.NotEmpty(t, result.Errors)

	_, _, err := LoadCrossSection("/nonexistent/tablet.dxf", model.DefaultSettings(), 1)
	assert.Error(t, err)
}

func TestLoadCrossSection_LargestContour(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.Circle(0, 0, 0, 3)
		require.NoError(t, err)
		_, err = d.Circle(20, 0, 0, 7)
		require.NoError(t, err)
	})

	o, warnings, err := LoadCrossSection(path, model.DefaultSettings(), 4)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	_, max := o.BoundingBox()
	assert.InDelta(t, 7, max.X, 1e-9)
}

func TestLoadCrossSection_OutgrowsSpacing(t *testing.T) {
	path := writeDrawing(t, func(d *drawing.Drawing) {
		_, err := d.Circle(0, 0, 0, 12)
		require.NoError(t, err)
	})

	// 24 mm across plus a 0.6 mm bead overruns the 24 mm pitch.
	_, _, err := LoadCrossSection(path, model.DefaultSettings(), 2)
	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "spacing", cfgErr.Field)
	assert.Contains(t, cfgErr.Reason, "24.60 x 24.60")

	// A single unit is never tiled.
	_, _, err = LoadCrossSection(path, model.DefaultSettings(), 1)
	assert.NoError(t, err)
}

func TestCheckFootprint(t *testing.T) {
	square := func(side float64) model.Outline {
		h := side / 2
		return model.Outline{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}, {X: -h, Y: -h}}
	}
	tests := []struct {
		name      string
		side      float64
		lineWidth float64
		spacing   float64
		quantity  int
		field     string
	}{
		{"fits", 12, 0.6, 24, 10, ""},
		{"just under one pitch", 23.2, 0.6, 24, 10, ""},
		{"overruns pitch", 23.5, 0.6, 24, 10, "spacing"},
		{"zero spacing stacks", 30, 0.6, 0, 10, ""},
		{"thinner than two beads", 1, 0.6, 24, 1, "line_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFootprint(square(tt.side), tt.lineWidth, tt.spacing, tt.quantity)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *model.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestBulgeArc_Semicircle(t *testing.T) {
	// Bulge 1 is a half circle over the chord.
	pts := bulgeArc(model.Point2D{X: -3}, model.Point2D{X: 3}, 1, 8)
	require.Len(t, pts, 9)
	for _, p := range pts {
		assert.InDelta(t, 3, math.Hypot(p.X, p.Y), 1e-9)
	}
	assert.InDelta(t, -3, pts[4].Y, 1e-9, "positive bulge sweeps counter-clockwise below the chord")
	assert.InDelta(t, 3, pts[8].X, 1e-9)
}

func TestBulgeArc_QuarterClockwise(t *testing.T) {
	// Bulge -tan(pi/8) is a clockwise quarter circle.
	pts := bulgeArc(model.Point2D{X: 5}, model.Point2D{Y: 5}, -math.Tan(math.Pi/8), 4)
	require.Len(t, pts, 5)
	for _, p := range pts {
		assert.InDelta(t, 5, math.Hypot(p.X-5, p.Y-5), 1e-9, "centre is (5, 5)")
	}
	assert.InDelta(t, 0, pts[4].X, 1e-9)
	assert.InDelta(t, 5, pts[4].Y, 1e-9)
}

func TestJoinEdges(t *testing.T) {
	a, b, c := model.Point2D{X: 0, Y: 0}, model.Point2D{X: 4, Y: 0}, model.Point2D{X: 0, Y: 3}
	// Edges deliberately out of order and one reversed.
	rings, err := joinEdges([]edge{{a, b}, {a, c}, {b, c}})
	require.NoError(t, err)
	require.Len(t, rings, 1)
	assert.Len(t, rings[0], 3)
	assert.InDelta(t, 6, math.Abs(rings[0].SignedArea()), 1e-9)

	rings, err = joinEdges([]edge{{a, b}, {b, c}})
	assert.Empty(t, rings)
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.Contains(t, err.Error(), "at (0.000, 3.000)")
}

func TestNormalizeOutline(t *testing.T) {
	in := model.Outline{{X: 10, Y: 10}, {X: 10, Y: 12}, {X: 14, Y: 12}, {X: 14, Y: 10}}
	out := normalizeOutline(in)

	assert.Equal(t, model.Point2D{X: 10, Y: 10}, in[0], "input untouched")
	assert.True(t, out.IsClosed())
	assert.Greater(t, out.SignedArea(), 0.0)
	min, max := out.BoundingBox()
	assert.Equal(t, model.Point2D{X: -2, Y: -1}, min)
	assert.Equal(t, model.Point2D{X: 2, Y: 1}, max)
}
