package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/tabletpath/internal/calibrate"
	"github.com/piwi3910/tabletpath/internal/formulation"
	"github.com/piwi3910/tabletpath/internal/gcode"
	"github.com/piwi3910/tabletpath/internal/importer"
	"github.com/piwi3910/tabletpath/internal/project"
)

type injectOptions struct {
	template      string
	out           string
	api           string
	dose          float64
	linesPerLayer int
	ePerLine      float64
	dual          bool
	switchIndex   int
	profile       string
	noPreamble    bool
}

func newInjectCmd(e *env) *cobra.Command {
	o := &injectOptions{}
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Fill cumulative extrusion values into a path template",
		Long: `Inject adds an extrusion value to every planar G1 move of a
hand-authored template. The per-line amount is either given directly with
--e-per-line or derived from a catalog paste formulation and a dose.
Dual-head formulations switch to the second head halfway through.`,
		Example: `  tabletpath inject --template disc.gcode --e-per-line 0.5
  tabletpath inject --template disc.gcode --api bupropion --dose 150 -o out.gcode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInject(cmd, e, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.template, "template", "t", "", "template file (required)")
	f.StringVarP(&o.out, "out", "o", "-", "output file")
	f.StringVar(&o.api, "api", "", "API of a catalog paste formulation")
	f.Float64Var(&o.dose, "dose", 0, "dose in mg (default: the formulation's)")
	f.IntVar(&o.linesPerLayer, "lines-per-layer", 0, "motion lines per layer (default: template lines / layers)")
	f.Float64Var(&o.ePerLine, "e-per-line", 0, "fixed extrusion per motion line")
	f.BoolVar(&o.dual, "dual", false, "switch heads halfway (with --e-per-line)")
	f.IntVar(&o.switchIndex, "switch-index", 0, "motion line index of the head switch (default: half)")
	f.StringVar(&o.profile, "profile", "", "firmware dialect (default from config)")
	f.BoolVar(&o.noPreamble, "no-preamble", false, "do not prepend the tool-0 preamble")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func runInject(cmd *cobra.Command, e *env, o *injectOptions) error {
	lines, err := importer.ReadTemplate(o.template)
	if err != nil {
		return err
	}
	motion := gcode.CountMotion(lines)
	flags := cmd.Flags()

	var ePerLine float64
	var dual bool
	var switchIndex int
	switch {
	case flags.Changed("e-per-line"):
		ePerLine = o.ePerLine
		dual = o.dual
		switchIndex = gcode.SwitchIndex(motion, dual)

	case o.api != "":
		catalog, err := project.LoadFormulations(e.formulationsPath)
		if err != nil {
			return fmt.Errorf("load formulations: %w", err)
		}
		f, ok := formulation.LookupIn(catalog, o.api)
		if !ok {
			return fmt.Errorf("no paste formulation for %q", o.api)
		}
		dose := o.dose
		if dose <= 0 {
			dose = f.DefaultDose
		}
		perLayer := o.linesPerLayer
		if perLayer <= 0 {
			if layers := calibrate.LayerCount(f.Height, f.Effective().LayerHeight); layers > 0 {
				perLayer = motion / layers
			}
		}
		plan, err := formulation.Plan(f, dose, perLayer)
		if err != nil {
			return err
		}
		if !plan.Fits {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %.1f mm³ of paste does not fit the %.1f mm³ tablet\n",
				plan.RequiredVolume, plan.GeometricVolume)
		}
		ePerLine, dual, switchIndex = plan.EPerLine, f.DualHead(), plan.SwitchIndex

	default:
		return errors.New("either --e-per-line or --api is required")
	}
	if flags.Changed("switch-index") {
		switchIndex = o.switchIndex
	}

	name := o.profile
	if name == "" {
		name = e.cfg.DefaultSettings.Profile
	}
	profile, err := e.profile(name)
	if err != nil {
		return err
	}
	g := gcode.NewWithProfile(e.cfg.DefaultSettings, profile)

	var res gcode.InjectResult
	if o.noPreamble {
		res = g.Inject(lines, ePerLine, dual, switchIndex)
	} else {
		res = g.InjectProgram(lines, ePerLine, dual, switchIndex)
	}
	if err := writeOutput(cmd, o.out, res.String()); err != nil {
		return fmt.Errorf("write program: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "injected %d of %d motion lines at %.4f per line (switched: %t)\n",
		res.Modified, motion, ePerLine, res.Switched)
	return nil
}
