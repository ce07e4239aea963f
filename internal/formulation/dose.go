// Package formulation turns prescribed API strengths into the unit weight
// and fill volume the toolpath generator needs, and breaks a batch down
// into per-ingredient quantities for the compounding worksheet.
package formulation

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/tabletpath/internal/model"
)

// API is one active ingredient at a strength in mg per unit.
type API struct {
	Name     string  `json:"name" yaml:"name"`
	Strength float64 `json:"strength" yaml:"strength"`
}

// DoseResult is the sizing of one unit.
type DoseResult struct {
	ProductType string
	TotalAPI    float64 // mg per unit
	Limit       float64 // Maximum API fraction of unit weight
	UnitWeight  float64 // mg
	Volume      float64 // mm³ of paste per unit
}

// ActiveAPIs drops blank rows and zero strengths, the way the dose form
// ignores unused API slots.
func ActiveAPIs(apis []API) []API {
	var out []API
	for _, a := range apis {
		if strings.TrimSpace(a.Name) == "" || a.Strength <= 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Compute sizes a unit so the APIs sit exactly at the product type's
// limit: unit weight = total API / limit, volume = weight / density.
// cfg is read, never modified.
func Compute(cfg model.AppConfig, productType string, apis []API) (DoseResult, error) {
	active := ActiveAPIs(apis)
	if len(active) == 0 {
		return DoseResult{}, &model.ConfigurationError{Field: "apis", Reason: "at least one API with a positive strength is required"}
	}

	limit := cfg.APILimit(productType)
	if limit <= 0 || limit > 1 || math.IsNaN(limit) {
		return DoseResult{}, &model.ConfigurationError{Field: "api_limit", Value: limit, Reason: "must be in (0, 1]"}
	}
	if cfg.DensityMgPerML <= 0 {
		return DoseResult{}, &model.ConfigurationError{Field: "density", Value: cfg.DensityMgPerML, Reason: "must be positive"}
	}

	var total float64
	for _, a := range active {
		total += a.Strength
	}

	weight := total / limit
	return DoseResult{
		ProductType: productType,
		TotalAPI:    total,
		Limit:       limit,
		UnitWeight:  weight,
		Volume:      weight / cfg.DensityMgPerML * 1000,
	}, nil
}

// IngredientType distinguishes actives from excipients on the worksheet.
type IngredientType string

const (
	TypeAPI  IngredientType = "API"
	TypeBase IngredientType = "Base"
)

// BatchLine is one worksheet row.
type BatchLine struct {
	Name       string
	Type       IngredientType
	PerUnit    float64 // mg
	Percentage float64 // Of unit weight
	Total      float64 // mg for the whole batch
}

// Breakdown lists every ingredient of a batch. APIs keep their strengths;
// the base template fills the remaining weight in its own proportions.
// A nil template yields API rows only.
func Breakdown(res DoseResult, apis []API, tmpl *model.FormulationTemplate, quantity int) ([]BatchLine, error) {
	if quantity <= 0 {
		return nil, &model.ConfigurationError{Field: "quantity", Value: quantity, Reason: "must be positive"}
	}
	if res.UnitWeight <= 0 {
		return nil, &model.ConfigurationError{Field: "unit_weight", Value: res.UnitWeight, Reason: "must be positive"}
	}

	q := float64(quantity)
	var lines []BatchLine
	for _, a := range ActiveAPIs(apis) {
		lines = append(lines, BatchLine{
			Name:       a.Name,
			Type:       TypeAPI,
			PerUnit:    a.Strength,
			Percentage: a.Strength / res.UnitWeight * 100,
			Total:      a.Strength * q,
		})
	}

	if tmpl == nil {
		return lines, nil
	}
	basePct := tmpl.TotalPercentage()
	if basePct <= 0 {
		return nil, fmt.Errorf("template %q: ingredient percentages sum to %.2f", tmpl.ProductType, basePct)
	}
	remaining := res.UnitWeight - res.TotalAPI
	for _, in := range tmpl.Ingredients {
		perUnit := remaining * in.Percentage / basePct
		lines = append(lines, BatchLine{
			Name:       in.Name,
			Type:       TypeBase,
			PerUnit:    perUnit,
			Percentage: perUnit / res.UnitWeight * 100,
			Total:      perUnit * q,
		})
	}
	return lines, nil
}
