package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/gogpu/gg"

	"github.com/piwi3910/tabletpath/internal/gcode"
)

// PreviewOptions controls the toolpath preview image.
type PreviewOptions struct {
	Width, Height int     // Pixels
	Margin        float64 // Pixels kept clear on every side
	ShowTravel    bool    // Draw non-extruding XY moves
}

// DefaultPreviewOptions returns an 800x800 preview with travel moves.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Width: 800, Height: 800, Margin: 20, ShowTravel: true}
}

// toolColors maps tool numbers onto stroke colors; extra tools cycle.
var toolColors = []gg.RGBA{
	gg.RGB(0.13, 0.59, 0.95), // first head, blue
	gg.RGB(1.00, 0.60, 0.00), // second head, orange
}

var travelColor = gg.RGB(0.75, 0.75, 0.75)

// bounds covers the XY extent of the drawn moves.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func moveBounds(moves []gcode.Move, travel bool) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	found := false
	for _, m := range moves {
		if !drawn(m, travel) {
			continue
		}
		found = true
		b.minX = math.Min(b.minX, math.Min(m.FromX, m.ToX))
		b.minY = math.Min(b.minY, math.Min(m.FromY, m.ToY))
		b.maxX = math.Max(b.maxX, math.Max(m.FromX, m.ToX))
		b.maxY = math.Max(b.maxY, math.Max(m.FromY, m.ToY))
	}
	return b, found
}

func drawn(m gcode.Move, travel bool) bool {
	switch m.Type {
	case gcode.MoveExtrude:
		return true
	case gcode.MoveTravel:
		return travel
	default:
		return false
	}
}

// RenderPreview draws a top-down view of the moves: extrusion colored by
// tool, travel in light grey. Layers overlap, so a tablet shows as its
// outline. The caller owns the returned context and must Close it.
func RenderPreview(moves []gcode.Move, opts PreviewOptions) (*gg.Context, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview size %dx%d must be positive", opts.Width, opts.Height)
	}
	b, ok := moveBounds(moves, opts.ShowTravel)
	if !ok {
		return nil, fmt.Errorf("no drawable moves in program")
	}

	w := math.Max(b.maxX-b.minX, 1e-6)
	h := math.Max(b.maxY-b.minY, 1e-6)
	availW := float64(opts.Width) - 2*opts.Margin
	availH := float64(opts.Height) - 2*opts.Margin
	scale := math.Min(availW/w, availH/h)
	offX := opts.Margin + (availW-w*scale)/2
	offY := opts.Margin + (availH-h*scale)/2

	// Bed Y grows upwards, image Y downwards.
	px := func(x float64) float64 { return offX + (x-b.minX)*scale }
	py := func(y float64) float64 { return float64(opts.Height) - (offY + (y-b.minY)*scale) }

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.ClearWithColor(gg.White)

	if opts.ShowTravel {
		dc.SetColor(travelColor.Color())
		dc.SetLineWidth(0.5)
		for _, m := range moves {
			if m.Type == gcode.MoveTravel {
				dc.MoveTo(px(m.FromX), py(m.FromY))
				dc.LineTo(px(m.ToX), py(m.ToY))
			}
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("stroke travel: %w", err)
		}
	}

	dc.SetLineWidth(1.5)
	for _, tool := range toolsIn(moves) {
		col := toolColors[tool%len(toolColors)]
		dc.SetColor(col.Color())
		for _, m := range moves {
			if m.Type == gcode.MoveExtrude && m.Tool == tool {
				dc.MoveTo(px(m.FromX), py(m.FromY))
				dc.LineTo(px(m.ToX), py(m.ToY))
			}
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("stroke tool %d: %w", tool, err)
		}
	}
	return dc, nil
}

// toolsIn returns the tools that extrude, in ascending order so later
// heads draw on top.
func toolsIn(moves []gcode.Move) []int {
	seen := make(map[int]bool)
	var tools []int
	for _, m := range moves {
		if m.Type == gcode.MoveExtrude && !seen[m.Tool] {
			seen[m.Tool] = true
			tools = append(tools, m.Tool)
		}
	}
	sort.Ints(tools)
	return tools
}

// ExportPreview renders program text to a PNG file.
func ExportPreview(path, program string, opts PreviewOptions) error {
	dc, err := RenderPreview(gcode.ParseProgram(program), opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save preview %s: %w", path, err)
	}
	return nil
}

// WritePreview renders program text as PNG to w.
func WritePreview(w io.Writer, program string, opts PreviewOptions) error {
	dc, err := RenderPreview(gcode.ParseProgram(program), opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}
