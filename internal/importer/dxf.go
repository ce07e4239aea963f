package importer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

const (
	circleSamples = 64   // Chords per full circle
	arcSamples    = 32   // Chords per arc or bulge
	joinTol       = 0.01 // mm between endpoints that count as joined
	minExtent     = 0.01 // mm; smaller contours are drafting debris
)

// edge is one straight piece of a LINE or a sampled ARC.
type edge struct {
	a, b model.Point2D
}

func pt(v []float64) model.Point2D {
	return model.Point2D{X: v[0], Y: v[1]}
}

func near(p, q model.Point2D) bool {
	return p.Dist(q) <= joinTol
}

func contourError(at model.Point2D, reason string) error {
	return &model.ConfigurationError{
		Field:  "dxf contour",
		Value:  fmt.Sprintf("at (%.3f, %.3f)", at.X, at.Y),
		Reason: reason,
	}
}

// ImportDXF reads tablet cross-sections from a DXF drawing. Every closed
// contour becomes a closed, counter-clockwise outline centred on the
// origin, largest first. Open polylines and line chains that never
// return to their start are reported in Errors.
func ImportDXF(path string) ImportResult {
	outlines, warnings, err := readCrossSections(path)
	result := ImportResult{Outlines: outlines, Warnings: warnings}

	var joined interface{ Unwrap() []error }
	switch {
	case errors.As(err, &joined):
		for _, e := range joined.Unwrap() {
			result.Errors = append(result.Errors, e.Error())
		}
	case err != nil:
		result.Errors = append(result.Errors, err.Error())
	case len(outlines) == 0:
		result.Errors = append(result.Errors, "no closed contours in drawing")
	}
	return result
}

// LoadCrossSection returns the largest closed contour of a drawing as a
// custom tablet outline checked against the print settings. Any open
// contour fails the load so a broken export is never printed.
func LoadCrossSection(path string, s model.PrintSettings, quantity int) (model.Outline, []string, error) {
	outlines, warnings, err := readCrossSections(path)
	if err != nil {
		return nil, warnings, fmt.Errorf("import %s: %w", path, err)
	}
	if len(outlines) == 0 {
		return nil, warnings, &model.ConfigurationError{Field: "dxf", Value: path, Reason: "no closed contours"}
	}
	o := outlines[0]
	if err := CheckFootprint(o, s.LineWidth, s.Spacing, quantity); err != nil {
		return nil, warnings, err
	}
	return o, warnings, nil
}

// CheckFootprint rejects an outline narrower than two bead widths. When
// several units are tiled it also rejects an outline whose extent plus
// one bead overruns the pitch between unit origins. Zero spacing stacks
// units on purpose and is not checked.
func CheckFootprint(o model.Outline, lineWidth, spacing float64, quantity int) error {
	min, max := o.BoundingBox()
	w, h := max.X-min.X, max.Y-min.Y
	if w < 2*lineWidth || h < 2*lineWidth {
		return &model.ConfigurationError{
			Field:  "line_width",
			Value:  lineWidth,
			Reason: fmt.Sprintf("imported outline is only %.2f x %.2f mm", w, h),
		}
	}
	if quantity > 1 && spacing > 0 && (w+lineWidth > spacing || h+lineWidth > spacing) {
		return &model.ConfigurationError{
			Field:  "spacing",
			Value:  spacing,
			Reason: fmt.Sprintf("imported outline needs %.2f x %.2f mm per unit", w+lineWidth, h+lineWidth),
		}
	}
	return nil
}

// readCrossSections collects the closed contours of a drawing. Circles
// and polylines stand alone; lines and arcs are joined end to end.
// Contour errors are combined with errors.Join.
func readCrossSections(path string) ([]model.Outline, []string, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open drawing: %w", err)
	}

	var (
		contours []model.Outline
		loose    []edge
		errs     []error
	)
	for _, ent := range drawing.Entities() {
		switch e := ent.(type) {
		case *entity.Circle:
			ring := sampleArc(pt(e.Center), e.Radius, 0, 2*math.Pi, circleSamples)
			contours = append(contours, ring[:circleSamples])

		case *entity.LwPolyline:
			ring, err := polylineContour(e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			contours = append(contours, ring)

		case *entity.Arc:
			start := e.Angle[0] * math.Pi / 180
			sweep := e.Angle[1]*math.Pi/180 - start
			if sweep <= 0 {
				sweep += 2 * math.Pi
			}
			pts := sampleArc(pt(e.Circle.Center), e.Circle.Radius, start, sweep, arcSamples)
			for i := 1; i < len(pts); i++ {
				loose = append(loose, edge{pts[i-1], pts[i]})
			}

		case *entity.Line:
			if a, b := pt(e.Start), pt(e.End); !near(a, b) {
				loose = append(loose, edge{a, b})
			}
		}
	}

	rings, err := joinEdges(loose)
	contours = append(contours, rings...)
	if err != nil {
		errs = append(errs, err)
	}

	var (
		kept     []model.Outline
		warnings []string
	)
	for _, c := range contours {
		min, max := c.BoundingBox()
		if w, h := max.X-min.X, max.Y-min.Y; w < minExtent || h < minExtent {
			warnings = append(warnings, fmt.Sprintf("skipped %.3f x %.3f mm contour", w, h))
			continue
		}
		kept = append(kept, normalizeOutline(c))
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].SignedArea() > kept[j].SignedArea()
	})
	return kept, warnings, errors.Join(errs...)
}

// polylineContour expands bulges into arcs. A polyline counts as closed
// when its closed flag is set or its last vertex repeats the first.
func polylineContour(lw *entity.LwPolyline) (model.Outline, error) {
	n := len(lw.Vertices)
	if n == 0 {
		return nil, contourError(model.Point2D{}, "polyline has no vertices")
	}
	closed := lw.Closed
	if n > 1 && near(pt(lw.Vertices[0]), pt(lw.Vertices[n-1])) {
		closed = true
		n--
	}
	if !closed {
		return nil, contourError(pt(lw.Vertices[n-1]), "polyline is not closed")
	}
	if n < 3 {
		return nil, contourError(pt(lw.Vertices[0]), "polyline has fewer than three vertices")
	}

	var ring model.Outline
	for i := 0; i < n; i++ {
		from, to := pt(lw.Vertices[i]), pt(lw.Vertices[(i+1)%n])
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			ring = append(ring, from)
			continue
		}
		arc := bulgeArc(from, to, bulge, arcSamples)
		ring = append(ring, arc[:len(arc)-1]...)
	}
	return ring, nil
}

// bulgeArc samples the arc between two polyline vertices. The bulge is
// the tangent of a quarter of the included angle; positive sweeps
// counter-clockwise. The n+1 points run from p1 to p2.
func bulgeArc(p1, p2 model.Point2D, bulge float64, n int) model.Outline {
	chord := p1.Dist(p2)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}
	theta := 4 * math.Atan(bulge)
	ux, uy := (p2.X-p1.X)/chord, (p2.Y-p1.Y)/chord
	d := chord / (2 * math.Tan(theta/2))
	centre := model.Point2D{X: (p1.X+p2.X)/2 - uy*d, Y: (p1.Y+p2.Y)/2 + ux*d}
	r := chord / (2 * math.Abs(math.Sin(theta/2)))
	start := math.Atan2(p1.Y-centre.Y, p1.X-centre.X)
	return sampleArc(centre, r, start, theta, n)
}

// sampleArc returns n+1 points on a circle from start through start+sweep.
func sampleArc(c model.Point2D, r, start, sweep float64, n int) model.Outline {
	pts := make(model.Outline, n+1)
	for i := range pts {
		a := start + sweep*float64(i)/float64(n)
		pts[i] = model.Point2D{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

// joinEdges walks loose edges into rings. Each walk starts at an unused
// edge and keeps taking an edge that touches the current tail until it
// is back at its start. A walk that runs out of edges first is open and
// reported at the point where it stopped.
func joinEdges(edges []edge) ([]model.Outline, error) {
	used := make([]bool, len(edges))
	var (
		rings []model.Outline
		errs  []error
	)
	for first := range edges {
		if used[first] {
			continue
		}
		used[first] = true
		ring := model.Outline{edges[first].a, edges[first].b}
		for !near(ring[len(ring)-1], ring[0]) {
			next, ok := nextVertex(edges, used, ring[len(ring)-1])
			if !ok {
				break
			}
			ring = append(ring, next)
		}

		tail := ring[len(ring)-1]
		switch {
		case !near(tail, ring[0]):
			errs = append(errs, contourError(tail, "line chain does not close"))
		case len(ring) < 4:
			errs = append(errs, contourError(tail, "line chain has fewer than three vertices"))
		default:
			rings = append(rings, ring[:len(ring)-1])
		}
	}
	return rings, errors.Join(errs...)
}

// nextVertex claims the first unused edge touching tail and returns its
// far end.
func nextVertex(edges []edge, used []bool, tail model.Point2D) (model.Point2D, bool) {
	for i, e := range edges {
		if used[i] {
			continue
		}
		switch {
		case near(tail, e.a):
			used[i] = true
			return e.b, true
		case near(tail, e.b):
			used[i] = true
			return e.a, true
		}
	}
	return model.Point2D{}, false
}

// normalizeOutline centres the ring's bounding box on the origin, winds it
// counter-clockwise and closes it, the convention generated shapes share.
func normalizeOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return o
	}
	if o.IsClosed() {
		o = o[:len(o)-1]
	}
	min, max := o.BoundingBox()
	out := o.Translate(-(min.X+max.X)/2, -(min.Y+max.Y)/2)
	if out.SignedArea() < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out.Close()
}
