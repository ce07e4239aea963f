// Package shapes generates closed tablet cross-section outlines.
package shapes

import (
	"math"

	"github.com/piwi3910/tabletpath/internal/model"
)

// Circle returns a closed polygon of segments edges approximating a
// circle centred on the origin. The last point is the first point.
func Circle(radius float64, segments int) (model.Outline, error) {
	if radius <= 0 {
		return nil, &model.ConfigurationError{Field: "radius", Value: radius, Reason: "must be positive"}
	}
	if segments < 2 {
		return nil, &model.ConfigurationError{Field: "segments", Value: segments, Reason: "must be at least 2"}
	}
	return ellipse(radius, radius, segments), nil
}

// Oval returns a closed ellipse with semi-axes length/2 and width/2,
// sampled at the same angular steps as Circle.
func Oval(length, width float64, segments int) (model.Outline, error) {
	if length <= 0 {
		return nil, &model.ConfigurationError{Field: "length", Value: length, Reason: "must be positive"}
	}
	if width <= 0 {
		return nil, &model.ConfigurationError{Field: "width", Value: width, Reason: "must be positive"}
	}
	if segments < 2 {
		return nil, &model.ConfigurationError{Field: "segments", Value: segments, Reason: "must be at least 2"}
	}
	return ellipse(length/2, width/2, segments), nil
}

func ellipse(a, b float64, segments int) model.Outline {
	outline := make(model.Outline, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		outline[i] = model.Point2D{X: a * math.Cos(angle), Y: b * math.Sin(angle)}
	}
	outline[segments] = outline[0]
	return outline
}

// Caplet returns a stadium: two semicircular end caps of radius width/2
// joined by straight sides of length (length - width).
//
// One half-circle arc of resolution+1 points is generated facing +X and
// translated to the right end. The left cap is the same arc rotated by
// 180 degrees, which keeps the point order running top to bottom. The
// straight sides are the edges between the two arcs, so the loop runs
// counter-clockwise without crossing itself.
func Caplet(length, width float64, resolution int) (model.Outline, error) {
	if length <= 0 {
		return nil, &model.ConfigurationError{Field: "length", Value: length, Reason: "must be positive"}
	}
	if width <= 0 {
		return nil, &model.ConfigurationError{Field: "width", Value: width, Reason: "must be positive"}
	}
	if length < width {
		return nil, &model.ConfigurationError{Field: "length", Value: length, Reason: "must not be shorter than width"}
	}
	if resolution < 1 {
		return nil, &model.ConfigurationError{Field: "resolution", Value: resolution, Reason: "must be at least 1"}
	}

	r := width / 2
	c := length/2 - r

	arc := make([]model.Point2D, resolution+1)
	for i := 0; i <= resolution; i++ {
		angle := -math.Pi/2 + math.Pi*float64(i)/float64(resolution)
		arc[i] = model.Point2D{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}

	outline := make(model.Outline, 0, 2*len(arc)+1)
	for _, p := range arc {
		outline = append(outline, model.Point2D{X: p.X + c, Y: p.Y})
	}
	for _, p := range arc {
		outline = append(outline, model.Point2D{X: -p.X - c, Y: -p.Y})
	}
	outline = append(outline, outline[0])
	return outline, nil
}

// Custom closes and validates an externally supplied outline.
func Custom(points model.Outline) (model.Outline, error) {
	closed := points.Close()
	if closed.Segments() < 2 {
		return nil, &model.ConfigurationError{Field: "custom", Value: len(points), Reason: "outline needs at least 2 segments"}
	}
	out := make(model.Outline, len(closed))
	copy(out, closed)
	return out, nil
}

// OutlineFor returns the outline for a shape kind. Unsupported kinds are
// rejected before any geometry is computed.
func OutlineFor(kind model.ShapeKind, p model.ShapeParams) (model.Outline, error) {
	switch kind {
	case model.ShapeCircle:
		return Circle(p.Radius, p.Segments)
	case model.ShapeOval:
		return Oval(p.Length, p.Width, p.Segments)
	case model.ShapeCaplet:
		return Caplet(p.Length, p.Width, p.Resolution)
	case model.ShapeCustom:
		return Custom(p.Custom)
	default:
		return nil, &model.ConfigurationError{Field: "shape", Value: string(kind), Reason: "unsupported shape kind"}
	}
}
