package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist returns the Euclidean distance between two points.
func (p Point2D) Dist(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Outline represents a closed polygon as a sequence of 2D points.
// Generated outlines repeat the first point at the end, so a closed
// outline with n segments holds n+1 points.
type Outline []Point2D

// IsClosed reports whether the first and last points coincide exactly.
func (o Outline) IsClosed() bool {
	if len(o) < 2 {
		return false
	}
	return o[0] == o[len(o)-1]
}

// Segments returns the number of segments walked along the outline.
func (o Outline) Segments() int {
	if len(o) < 2 {
		return 0
	}
	return len(o) - 1
}

// Perimeter returns the sum of distances between consecutive points.
func (o Outline) Perimeter() float64 {
	var total float64
	for i := 0; i+1 < len(o); i++ {
		total += o[i].Dist(o[i+1])
	}
	return total
}

// Close returns the outline with its first point appended when it is not
// already closed.
func (o Outline) Close() Outline {
	if len(o) == 0 || o.IsClosed() {
		return o
	}
	result := make(Outline, len(o), len(o)+1)
	copy(result, o)
	return append(result, o[0])
}

// SignedArea returns the shoelace area; positive for counter-clockwise winding.
func (o Outline) SignedArea() float64 {
	var area float64
	n := len(o)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return area / 2
}

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = o[0]
	max = o[0]
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// LayerPlan is one Z height and the outline traced at that height.
type LayerPlan struct {
	Index   int     `json:"index"`
	Z       float64 `json:"z"`
	Outline Outline `json:"outline"`
}

// UnitPlacement is the translation applied to one unit on the print bed.
type UnitPlacement struct {
	Index   int     `json:"index"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// ShapeKind names a tablet cross-section generator.
type ShapeKind string

const (
	ShapeCircle ShapeKind = "circle"
	ShapeOval   ShapeKind = "oval"
	ShapeCaplet ShapeKind = "caplet"
	ShapeCustom ShapeKind = "custom" // Imported outline, e.g. from DXF
)

// ShapeKinds lists the built-in kinds for CLI help and validation.
func ShapeKinds() []ShapeKind {
	return []ShapeKind{ShapeCircle, ShapeOval, ShapeCaplet, ShapeCustom}
}

// ParseShapeKind maps user-facing shape names onto a ShapeKind. Dose
// forms label circular tablets "Round", "Cylinder" or "Disc".
func ParseShapeKind(s string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle", "round", "cylinder", "disc":
		return ShapeCircle, nil
	case "oval", "ellipse":
		return ShapeOval, nil
	case "caplet", "stadium":
		return ShapeCaplet, nil
	case "custom", "dxf":
		return ShapeCustom, nil
	default:
		return "", &ConfigurationError{Field: "shape", Value: s, Reason: "unsupported shape kind"}
	}
}

// ShapeParams carries the dimensions for every shape kind. Only the
// fields relevant to the selected kind are read.
type ShapeParams struct {
	Radius     float64 `json:"radius,omitempty" yaml:"radius,omitempty"`         // circle, mm
	Length     float64 `json:"length,omitempty" yaml:"length,omitempty"`         // oval/caplet, mm
	Width      float64 `json:"width,omitempty" yaml:"width,omitempty"`           // oval/caplet, mm
	Segments   int     `json:"segments,omitempty" yaml:"segments,omitempty"`     // circle/oval angular samples
	Resolution int     `json:"resolution,omitempty" yaml:"resolution,omitempty"` // caplet half-arc samples
	Custom     Outline `json:"custom,omitempty" yaml:"custom,omitempty"`         // custom outline points
}

// DefaultShapeParams returns the stock dimensions for a shape kind.
func DefaultShapeParams(kind ShapeKind) ShapeParams {
	switch kind {
	case ShapeOval:
		return ShapeParams{Length: 12, Width: 6, Segments: 24}
	case ShapeCaplet:
		return ShapeParams{Length: 12, Width: 6, Resolution: 8}
	default:
		return ShapeParams{Radius: 6, Segments: 16}
	}
}

// HeadMode selects how extruded volume is divided between print heads.
type HeadMode string

const (
	HeadSingle HeadMode = "single" // All volume on the primary axis
	HeadDual   HeadMode = "dual"   // Volume split evenly across both axes
)

func (h HeadMode) String() string {
	if h == HeadDual {
		return "Dual Head"
	}
	return "Single Head"
}

// ParseHeadMode accepts "single"/"dual" as well as the form labels
// "Single Head"/"Dual Head".
func ParseHeadMode(s string) (HeadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single head", "1":
		return HeadSingle, nil
	case "dual", "dual head", "2":
		return HeadDual, nil
	default:
		return "", &ConfigurationError{Field: "head_mode", Value: s, Reason: "must be single or dual"}
	}
}

// PrintSettings holds the per-layer and per-head parameters of a job.
type PrintSettings struct {
	LayerHeight  float64  `json:"layer_height" yaml:"layerHeight"`   // mm
	TabletHeight float64  `json:"tablet_height" yaml:"tabletHeight"` // mm
	LineWidth    float64  `json:"line_width" yaml:"lineWidth"`       // mm
	Spacing      float64  `json:"spacing" yaml:"spacing"`            // Grid pitch between units, mm
	HeadMode     HeadMode `json:"head_mode" yaml:"headMode"`
	StrictVolume bool     `json:"strict_volume" yaml:"strictVolume"` // Fail instead of falling back on zero path volume
	Profile      string   `json:"profile" yaml:"profile"`            // Firmware dialect name
}

// DefaultSettings returns the stock print settings.
func DefaultSettings() PrintSettings {
	return PrintSettings{
		LayerHeight:  0.3,
		TabletHeight: 3.6,
		LineWidth:    0.6,
		Spacing:      24.0,
		HeadMode:     HeadSingle,
		StrictVolume: false,
		Profile:      "CraftHealth",
	}
}

// Job is one complete synthesis request: what to print and how many.
type Job struct {
	ID           string        `json:"id" yaml:"id,omitempty"`
	Name         string        `json:"name" yaml:"name,omitempty"`
	Quantity     int           `json:"quantity" yaml:"quantity"`
	TargetVolume float64       `json:"target_volume" yaml:"targetVolume"` // mm³ per unit
	Shape        ShapeKind     `json:"shape" yaml:"shape"`
	ShapeParams  ShapeParams   `json:"shape_params" yaml:"shapeParams"`
	Settings     PrintSettings `json:"settings" yaml:"settings"`
}

// NewJob creates a job with a generated ID and default settings.
func NewJob(name string, quantity int, targetVolume float64, shape ShapeKind) Job {
	return Job{
		ID:           NewJobID(),
		Name:         name,
		Quantity:     quantity,
		TargetVolume: targetVolume,
		Shape:        shape,
		ShapeParams:  DefaultShapeParams(shape),
		Settings:     DefaultSettings(),
	}
}

// NewJobID returns a short random identifier for jobs and templates.
func NewJobID() string {
	return uuid.New().String()[:8]
}

// Validate checks the inputs the synthesis engine requires. Shape
// parameters are validated by the shape library.
func (j Job) Validate() error {
	if j.Quantity <= 0 {
		return &ConfigurationError{Field: "quantity", Value: j.Quantity, Reason: "must be positive"}
	}
	if !finite(j.TargetVolume) || j.TargetVolume <= 0 {
		return &ConfigurationError{Field: "target_volume", Value: j.TargetVolume, Reason: "must be positive"}
	}
	return j.Settings.Validate()
}

// Validate checks layer geometry, head mode and spacing. NaN and
// infinite values are rejected along with non-positive ones.
func (s PrintSettings) Validate() error {
	if !finite(s.LayerHeight) || s.LayerHeight <= 0 {
		return &ConfigurationError{Field: "layer_height", Value: s.LayerHeight, Reason: "must be positive"}
	}
	if !finite(s.TabletHeight) || s.TabletHeight <= 0 {
		return &ConfigurationError{Field: "tablet_height", Value: s.TabletHeight, Reason: "must be positive"}
	}
	if !finite(s.LineWidth) || s.LineWidth <= 0 {
		return &ConfigurationError{Field: "line_width", Value: s.LineWidth, Reason: "must be positive"}
	}
	if !finite(s.Spacing) || s.Spacing < 0 {
		return &ConfigurationError{Field: "spacing", Value: s.Spacing, Reason: "must not be negative"}
	}
	if s.HeadMode != HeadSingle && s.HeadMode != HeadDual {
		return &ConfigurationError{Field: "head_mode", Value: string(s.HeadMode), Reason: "must be single or dual"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
