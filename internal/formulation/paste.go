package formulation

import (
	"strings"

	"github.com/piwi3910/tabletpath/internal/calibrate"
	"github.com/piwi3910/tabletpath/internal/gcode"
	"github.com/piwi3910/tabletpath/internal/logging"
	"github.com/piwi3910/tabletpath/internal/model"
)

// Head describes the paste loaded into one print head.
type Head struct {
	Base        string  `json:"base" yaml:"base"`
	Density     float64 `json:"density" yaml:"density"`          // g/cm³
	DryLoading  float64 `json:"dry_loading" yaml:"dryLoading"`   // API % of dry paste
	LineWidth   float64 `json:"line_width" yaml:"lineWidth"`     // mm
	LayerHeight float64 `json:"layer_height" yaml:"layerHeight"` // mm
}

// Formulation is a ready-made paste product printed from a path template.
type Formulation struct {
	API         string            `json:"api" yaml:"api"`
	ProductType string            `json:"product_type" yaml:"productType"`
	Heads       []Head            `json:"heads" yaml:"heads"` // One entry per loaded head, T0 first
	Shape       model.ShapeKind   `json:"shape" yaml:"shape"`
	ShapeParams model.ShapeParams `json:"shape_params" yaml:"shapeParams"`
	Height      float64           `json:"height" yaml:"height"`            // mm
	DefaultDose float64           `json:"default_dose" yaml:"defaultDose"` // mg
}

// Catalog returns the built-in paste formulations.
func Catalog() []Formulation {
	return []Formulation{
		{
			API:         "Bupropion",
			ProductType: "Biphasic Tablet",
			Heads: []Head{
				{Base: "R4Ha", Density: 1.10, DryLoading: 80, LineWidth: 0.96, LayerHeight: 0.475},
				{Base: "R15M", Density: 1.12, DryLoading: 80, LineWidth: 0.96, LayerHeight: 0.475},
			},
			Shape:       model.ShapeCircle,
			ShapeParams: model.ShapeParams{Radius: 6, Segments: 16},
			Height:      4.21,
			DefaultDose: 240,
		},
		{
			API:         "Melatonin",
			ProductType: "Rapid Dissolve Tablet (RDT)",
			Heads: []Head{
				{Base: "PEG6000/Mannitol", Density: 0.95, DryLoading: 10, LineWidth: 0.8, LayerHeight: 0.4},
			},
			Shape:       model.ShapeCaplet,
			ShapeParams: model.ShapeParams{Length: 16, Width: 8, Resolution: 8},
			Height:      3,
			DefaultDose: 3,
		},
		{
			API:         "Progesterone",
			ProductType: "Lozenge",
			Heads: []Head{
				{Base: "Isomalt-Glycerin", Density: 1.20, DryLoading: 15, LineWidth: 1.0, LayerHeight: 0.4},
			},
			Shape:       model.ShapeCircle,
			ShapeParams: model.ShapeParams{Radius: 7, Segments: 16},
			Height:      5,
			DefaultDose: 100,
		},
		{
			API:         "Naltrexone",
			ProductType: "Sublingual Fast-Melt",
			Heads: []Head{
				{Base: "Xylitol-MCC-CCS", Density: 0.85, DryLoading: 7, LineWidth: 0.75, LayerHeight: 0.35},
			},
			Shape:       model.ShapeCircle,
			ShapeParams: model.ShapeParams{Radius: 5, Segments: 16},
			Height:      2.5,
			DefaultDose: 4.5,
		},
	}
}

// Lookup finds a built-in catalog entry by API name, case-insensitively.
func Lookup(api string) (Formulation, bool) {
	return LookupIn(Catalog(), api)
}

// LookupIn finds an entry of catalog by API name, case-insensitively.
func LookupIn(catalog []Formulation, api string) (Formulation, bool) {
	for _, f := range catalog {
		if strings.EqualFold(f.API, api) {
			return f, true
		}
	}
	return Formulation{}, false
}

// DualHead reports whether the formulation loads a second head.
func (f Formulation) DualHead() bool {
	return len(f.Heads) > 1
}

// Effective averages density, loading, line width and layer height over
// the loaded heads.
func (f Formulation) Effective() Head {
	if len(f.Heads) == 0 {
		return Head{}
	}
	var h Head
	for _, hd := range f.Heads {
		h.Density += hd.Density
		h.DryLoading += hd.DryLoading
		h.LineWidth += hd.LineWidth
		h.LayerHeight += hd.LayerHeight
	}
	n := float64(len(f.Heads))
	h.Base = f.Heads[0].Base
	h.Density /= n
	h.DryLoading /= n
	h.LineWidth /= n
	h.LayerHeight /= n
	return h
}

// RequiredVolume returns the paste volume in mm³ that carries dose mg of
// API at the head's loading and density.
func RequiredVolume(dose float64, h Head) (float64, error) {
	if dose <= 0 {
		return 0, &model.ConfigurationError{Field: "dose", Value: dose, Reason: "must be positive"}
	}
	if h.DryLoading <= 0 || h.Density <= 0 {
		return 0, &model.ConfigurationError{Field: "paste", Value: h.Base, Reason: "loading and density must be positive"}
	}
	cm3 := (dose / 1000) / (h.DryLoading / 100 * h.Density)
	return cm3 * 1000, nil
}

// PastePlan is everything the template injector needs for one dose.
type PastePlan struct {
	Formulation     Formulation
	Dose            float64 // mg
	Head            Head    // Effective head values
	RequiredVolume  float64 // mm³
	GeometricVolume float64 // mm³
	Fits            bool
	Layers          int
	LinesPerLayer   int
	EPerLine        float64
	SwitchIndex     int
}

// Plan sizes a paste print for dose mg spread over a template with
// linesPerLayer motion lines on each layer.
func Plan(f Formulation, dose float64, linesPerLayer int) (PastePlan, error) {
	if linesPerLayer <= 0 {
		return PastePlan{}, &model.ConfigurationError{Field: "lines_per_layer", Value: linesPerLayer, Reason: "must be positive"}
	}
	h := f.Effective()
	required, err := RequiredVolume(dose, h)
	if err != nil {
		return PastePlan{}, err
	}
	geo, err := calibrate.GeometricVolume(f.Shape, f.ShapeParams, f.Height)
	if err != nil {
		return PastePlan{}, err
	}

	layers := calibrate.LayerCount(f.Height, h.LayerHeight)
	p := PastePlan{
		Formulation:     f,
		Dose:            dose,
		Head:            h,
		RequiredVolume:  required,
		GeometricVolume: geo,
		Fits:            calibrate.Fits(geo, required),
		Layers:          layers,
		LinesPerLayer:   linesPerLayer,
		EPerLine:        calibrate.PerLineExtrusion(required, layers, linesPerLayer),
		SwitchIndex:     gcode.SwitchIndex(layers*linesPerLayer, f.DualHead()),
	}
	if !p.Fits {
		logging.Logger().Warn("dose does not fit the tablet shape",
			"api", f.API, "dose_mg", dose, "required_mm3", required, "geometric_mm3", geo)
	}
	return p, nil
}
