// Package calibrate converts a target fill volume into an extrusion
// scale for a layered outline path.
package calibrate

import (
	"math"

	"github.com/piwi3910/tabletpath/internal/model"
)

// layerEpsilon absorbs float error in height/layerHeight so that
// 3.6/0.3 yields 12 layers rather than 11.
const layerEpsilon = 1e-9

// LayerCount returns floor(totalHeight/layerHeight). A partial top layer
// is dropped. Non-positive inputs yield zero layers.
func LayerCount(totalHeight, layerHeight float64) int {
	if totalHeight <= 0 || layerHeight <= 0 {
		return 0
	}
	return int(math.Floor(totalHeight/layerHeight + layerEpsilon))
}

// LayerHeights returns the Z of every layer, (i+1)*layerHeight.
func LayerHeights(totalHeight, layerHeight float64) []float64 {
	n := LayerCount(totalHeight, layerHeight)
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = float64(i+1) * layerHeight
	}
	return heights
}

// Calibration is the result of fitting a target volume to a layered path.
type Calibration struct {
	Scale       float64 // Multiplier applied to every segment's deposited volume
	Perimeter   float64 // mm, one layer
	LayerVolume float64 // mm³, unscaled
	TotalVolume float64 // mm³, unscaled, all layers
	Degenerate  bool    // TotalVolume was zero and Scale fell back to 1
}

// Err returns ErrDegenerateGeometry for a degenerate calibration.
func (c Calibration) Err() error {
	if c.Degenerate {
		return model.ErrDegenerateGeometry
	}
	return nil
}

// Calibrate computes the unscaled path volume of numLayers copies of the
// outline and the scale that makes it equal targetVolume. Geometry is
// never changed; only extrusion amounts are scaled.
func Calibrate(outline model.Outline, lineWidth, layerHeight float64, numLayers int, targetVolume float64) Calibration {
	perimeter := outline.Perimeter()
	layerVolume := perimeter * lineWidth * layerHeight
	total := layerVolume * float64(numLayers)

	c := Calibration{
		Perimeter:   perimeter,
		LayerVolume: layerVolume,
		TotalVolume: total,
	}
	if total == 0 {
		c.Scale = 1.0
		c.Degenerate = true
		return c
	}
	c.Scale = targetVolume / total
	return c
}

// ScaleFactor returns targetVolume over the unscaled path volume, or
// exactly 1.0 when that volume is zero.
func ScaleFactor(outline model.Outline, lineWidth, layerHeight float64, numLayers int, targetVolume float64) float64 {
	return Calibrate(outline, lineWidth, layerHeight, numLayers, targetVolume).Scale
}

// PerLineExtrusion spreads targetVolume evenly over every motion line of
// a template, rounded to 4 decimals. It returns 0 when there are no lines.
func PerLineExtrusion(targetVolume float64, numLayers, linesPerLayer int) float64 {
	lines := numLayers * linesPerLayer
	if lines <= 0 {
		return 0
	}
	return Round(targetVolume/float64(lines), 4)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// GeometricVolume returns the solid volume in mm³ of a tablet of the given
// shape extruded to height. Circles are cylinders, ovals elliptic
// cylinders, caplets a rectangle plus two half discs. Custom outlines use
// the polygon area.
func GeometricVolume(kind model.ShapeKind, p model.ShapeParams, height float64) (float64, error) {
	if height <= 0 {
		return 0, &model.ConfigurationError{Field: "tablet_height", Value: height, Reason: "must be positive"}
	}
	switch kind {
	case model.ShapeCircle:
		if p.Radius <= 0 {
			return 0, &model.ConfigurationError{Field: "radius", Value: p.Radius, Reason: "must be positive"}
		}
		return math.Pi * p.Radius * p.Radius * height, nil
	case model.ShapeOval:
		if p.Length <= 0 || p.Width <= 0 {
			return 0, &model.ConfigurationError{Field: "length", Value: p.Length, Reason: "oval dimensions must be positive"}
		}
		return math.Pi * (p.Length / 2) * (p.Width / 2) * height, nil
	case model.ShapeCaplet:
		if p.Width <= 0 || p.Length < p.Width {
			return 0, &model.ConfigurationError{Field: "length", Value: p.Length, Reason: "caplet length must be at least width"}
		}
		r := p.Width / 2
		return (p.Width*(p.Length-p.Width) + math.Pi*r*r) * height, nil
	case model.ShapeCustom:
		closed := p.Custom.Close()
		if closed.Segments() < 2 {
			return 0, &model.ConfigurationError{Field: "custom", Value: len(p.Custom), Reason: "outline needs at least 2 segments"}
		}
		return math.Abs(closed.SignedArea()) * height, nil
	default:
		return 0, &model.ConfigurationError{Field: "shape", Value: string(kind), Reason: "unsupported shape kind"}
	}
}

// Fits reports whether the geometric volume can hold the required volume.
func Fits(geometric, required float64) bool {
	return geometric >= required
}
