package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/piwi3910/tabletpath/internal/calibrate"
	"github.com/piwi3910/tabletpath/internal/formulation"
	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/project"
)

const defaultProductType = "Rapid Dissolve Tablet (RDT)"

// parseAPIs reads "name:mg" (or "name=mg") pairs.
func parseAPIs(specs []string) ([]formulation.API, error) {
	apis := make([]formulation.API, 0, len(specs))
	for _, s := range specs {
		i := strings.LastIndexAny(s, ":=")
		if i <= 0 {
			return nil, fmt.Errorf("api %q: expected name:mg", s)
		}
		mg, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("api %q: invalid strength: %w", s, err)
		}
		apis = append(apis, formulation.API{Name: strings.TrimSpace(s[:i]), Strength: mg})
	}
	return apis, nil
}

type doseOptions struct {
	productType string
	apis        []string
	shape       string
	height      float64
	paste       string
	dose        float64
	lang        string
}

func newDoseCmd(e *env) *cobra.Command {
	o := &doseOptions{}
	cmd := &cobra.Command{
		Use:   "dose",
		Short: "Size a unit from API strengths, or a paste dose from the catalog",
		Example: `  tabletpath dose --api melatonin:10 --product-type "Fast Melt"
  tabletpath dose --paste bupropion --dose 150`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(o.lang)
			if err != nil {
				return fmt.Errorf("language %q: %w", o.lang, err)
			}
			p := message.NewPrinter(tag)
			if o.paste != "" {
				return runPasteDose(cmd, e, o, p)
			}
			return runUnitDose(cmd, e, o, p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.productType, "product-type", defaultProductType, "product type whose API limit applies")
	f.StringArrayVar(&o.apis, "api", nil, "active ingredient as name:mg (repeatable)")
	f.StringVar(&o.shape, "shape", "", "shape to check the fill volume against (default from config)")
	f.Float64Var(&o.height, "height", 0, "tablet height in mm (default from config)")
	f.StringVar(&o.paste, "paste", "", "API of a catalog paste formulation")
	f.Float64Var(&o.dose, "dose", 0, "paste dose in mg (default: the formulation's)")
	f.StringVar(&o.lang, "lang", "en", "language for number formatting")
	return cmd
}

func runUnitDose(cmd *cobra.Command, e *env, o *doseOptions, p *message.Printer) error {
	apis, err := parseAPIs(o.apis)
	if err != nil {
		return err
	}
	res, err := formulation.Compute(e.cfg, o.productType, apis)
	if err != nil {
		return err
	}

	shape := e.cfg.DefaultShape
	if o.shape != "" {
		if shape, err = model.ParseShapeKind(o.shape); err != nil {
			return err
		}
	}
	height := o.height
	if height <= 0 {
		height = e.cfg.DefaultSettings.TabletHeight
	}
	geo, err := calibrate.GeometricVolume(shape, model.DefaultShapeParams(shape), height)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	p.Fprintf(w, "Product type:  %s (API limit %.0f%%)\n", res.ProductType, res.Limit*100)
	p.Fprintf(w, "Total API:     %.2f mg\n", res.TotalAPI)
	p.Fprintf(w, "Unit weight:   %.1f mg\n", res.UnitWeight)
	p.Fprintf(w, "Fill volume:   %.1f mm³\n", res.Volume)
	p.Fprintf(w, "Shape volume:  %.1f mm³ (%s, %.2f mm)\n", geo, shape, height)
	if !calibrate.Fits(geo, res.Volume) {
		fmt.Fprintln(w, "WARNING: the fill volume does not fit the tablet shape")
	}
	return nil
}

func runPasteDose(cmd *cobra.Command, e *env, o *doseOptions, p *message.Printer) error {
	catalog, err := project.LoadFormulations(e.formulationsPath)
	if err != nil {
		return fmt.Errorf("load formulations: %w", err)
	}
	f, ok := formulation.LookupIn(catalog, o.paste)
	if !ok {
		return fmt.Errorf("no paste formulation for %q", o.paste)
	}
	dose := o.dose
	if dose <= 0 {
		dose = f.DefaultDose
	}

	h := f.Effective()
	required, err := formulation.RequiredVolume(dose, h)
	if err != nil {
		return err
	}
	geo, err := calibrate.GeometricVolume(f.Shape, f.ShapeParams, f.Height)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	p.Fprintf(w, "Formulation:   %s (%d head(s), %s)\n", f.API, len(f.Heads), f.ProductType)
	p.Fprintf(w, "Dose:          %.1f mg\n", dose)
	p.Fprintf(w, "Paste:         %.3f g/cm³ at %.1f%% loading\n", h.Density, h.DryLoading)
	p.Fprintf(w, "Required:      %.1f mm³\n", required)
	p.Fprintf(w, "Shape volume:  %.1f mm³ (%s, %.2f mm)\n", geo, f.Shape, f.Height)
	if !calibrate.Fits(geo, required) {
		fmt.Fprintln(w, "WARNING: the dose does not fit the tablet shape")
	}
	return nil
}
