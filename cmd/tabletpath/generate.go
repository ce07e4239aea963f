package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/piwi3910/tabletpath/internal/export"
	"github.com/piwi3910/tabletpath/internal/formulation"
	"github.com/piwi3910/tabletpath/internal/gcode"
	"github.com/piwi3910/tabletpath/internal/importer"
	"github.com/piwi3910/tabletpath/internal/logging"
	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/project"
	"github.com/piwi3910/tabletpath/internal/sessionlog"
	"github.com/piwi3910/tabletpath/internal/shapes"
)

const recentJobLimit = 10

type generateOptions struct {
	jobPath  string
	name     string
	quantity int
	volume   float64

	shape      string
	radius     float64
	length     float64
	width      float64
	segments   int
	resolution int
	dxfPath    string

	layerHeight  float64
	tabletHeight float64
	lineWidth    float64
	spacing      float64
	dual         bool
	strict       bool
	profile      string

	productType string
	apis        []string

	out        string
	preview    string
	report     string
	labels     string
	containers int
	record     bool
	logPath    string
	lang       string
}

func newGenerateCmd(e *env) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesise a complete print program for a batch of tablets",
		Example: `  tabletpath generate --quantity 10 --volume 500 --out batch.gcode
  tabletpath generate --job night.yaml --api melatonin:10 --report sheet.pdf --preview bed.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, e, o)
		},
	}

	d := model.DefaultSettings()
	f := cmd.Flags()
	f.StringVar(&o.jobPath, "job", "", "YAML job file; flags override its values")
	f.StringVar(&o.name, "name", "", "job name")
	f.IntVarP(&o.quantity, "quantity", "n", 0, "number of units (default from config)")
	f.Float64Var(&o.volume, "volume", 0, "target paste volume per unit, mm³")

	f.StringVar(&o.shape, "shape", "", "circle, oval, caplet or custom")
	f.Float64Var(&o.radius, "radius", 0, "circle radius, mm")
	f.Float64Var(&o.length, "length", 0, "oval or caplet length, mm")
	f.Float64Var(&o.width, "width", 0, "oval or caplet width, mm")
	f.IntVar(&o.segments, "segments", 0, "circle or oval segments")
	f.IntVar(&o.resolution, "resolution", 0, "caplet half-arc resolution")
	f.StringVar(&o.dxfPath, "dxf", "", "use the largest closed shape of a DXF drawing as the outline")

	f.Float64Var(&o.layerHeight, "layer-height", d.LayerHeight, "layer height, mm")
	f.Float64Var(&o.tabletHeight, "tablet-height", d.TabletHeight, "tablet height, mm")
	f.Float64Var(&o.lineWidth, "line-width", d.LineWidth, "extruded line width, mm")
	f.Float64Var(&o.spacing, "spacing", d.Spacing, "grid pitch between units, mm")
	f.BoolVar(&o.dual, "dual", false, "split extrusion evenly across both heads")
	f.BoolVar(&o.strict, "strict", false, "fail instead of extruding unscaled when the path volume is zero")
	f.StringVar(&o.profile, "profile", d.Profile, "firmware dialect")

	f.StringVar(&o.productType, "product-type", defaultProductType, "product type whose API limit applies")
	f.StringArrayVar(&o.apis, "api", nil, "active ingredient as name:mg (repeatable); sizes the volume when --volume is not set")

	f.StringVarP(&o.out, "out", "o", "-", "program output file")
	f.StringVar(&o.preview, "preview", "", "write a PNG preview of the toolpath")
	f.StringVar(&o.report, "report", "", "write the compounding worksheet PDF")
	f.StringVar(&o.labels, "labels", "", "write container labels PDF")
	f.IntVar(&o.containers, "containers", 1, "number of containers to label")
	f.BoolVar(&o.record, "record", false, "append the job to the configured session log")
	f.StringVar(&o.logPath, "log", "", "append the job to this session log (implies --record)")
	f.StringVar(&o.lang, "lang", "en", "language for worksheet number formatting")
	return cmd
}

func runGenerate(cmd *cobra.Command, e *env, o *generateOptions) error {
	job, err := buildJob(cmd, e, o)
	if err != nil {
		return err
	}

	var dose formulation.DoseResult
	var apis []formulation.API
	if len(o.apis) > 0 {
		if apis, err = parseAPIs(o.apis); err != nil {
			return err
		}
		if dose, err = formulation.Compute(e.cfg, o.productType, apis); err != nil {
			return err
		}
		if !cmd.Flags().Changed("volume") && job.TargetVolume == 0 {
			job.TargetVolume = dose.Volume
		}
	} else if o.report != "" || o.labels != "" {
		return errors.New("--report and --labels need at least one --api")
	}

	profile, err := e.profile(job.Settings.Profile)
	if err != nil {
		return err
	}
	prog, err := gcode.NewWithProfile(job.Settings, profile).Generate(job)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, o.out, prog.String()); err != nil {
		return fmt.Errorf("write program: %w", err)
	}

	sum := gcode.Summarize(gcode.ParseProgram(prog.String()))
	fmt.Fprintf(cmd.ErrOrStderr(), "job %s: %d units, %d layers, %d lines, E %.3f D %.3f\n",
		job.ID, sum.Units, sum.Layers, prog.Len(), sum.TotalE, sum.TotalD)

	if o.preview != "" {
		if err := export.ExportPreview(o.preview, prog.String(), export.DefaultPreviewOptions()); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}

	if o.report != "" || o.labels != "" {
		ws, err := buildWorksheet(e, o, job, dose, apis)
		if err != nil {
			return err
		}
		if o.report != "" {
			if err := export.ExportWorksheet(o.report, ws); err != nil {
				return fmt.Errorf("write worksheet: %w", err)
			}
		}
		if o.labels != "" {
			if err := export.ExportLabels(o.labels, ws, o.containers); err != nil {
				return fmt.Errorf("write labels: %w", err)
			}
		}
	}

	if o.record || o.logPath != "" {
		path := o.logPath
		if path == "" {
			path = e.cfg.SessionLogPath
		}
		entry := sessionlog.Entry{
			JobID:        job.ID,
			Shape:        job.Shape,
			Quantity:     job.Quantity,
			HeadMode:     job.Settings.HeadMode,
			APITotalMg:   dose.TotalAPI,
			UnitWeightMg: dose.UnitWeight,
		}
		if err := sessionlog.Append(path, entry); err != nil {
			return fmt.Errorf("append session log: %w", err)
		}
	}

	if o.jobPath != "" {
		abs, err := filepath.Abs(o.jobPath)
		if err != nil {
			abs = o.jobPath
		}
		project.AddRecentJob(&e.cfg, abs, recentJobLimit)
		if err := project.SaveAppConfig(e.configPath, e.cfg); err != nil {
			logging.Logger().Warn("could not update recent jobs", "error", err)
		}
	}
	return nil
}

// buildJob starts from the job file, or the config defaults, and applies
// every flag the user set explicitly.
func buildJob(cmd *cobra.Command, e *env, o *generateOptions) (model.Job, error) {
	var job model.Job
	if o.jobPath != "" {
		j, err := project.LoadJob(o.jobPath, e.cfg)
		if err != nil {
			return model.Job{}, err
		}
		job = j
	} else {
		job = model.Job{ID: model.NewJobID()}
		e.cfg.ApplyToJob(&job)
	}

	f := cmd.Flags()
	if f.Changed("shape") {
		kind, err := model.ParseShapeKind(o.shape)
		if err != nil {
			return model.Job{}, err
		}
		job.Shape = kind
		job.ShapeParams = model.DefaultShapeParams(kind)
	}
	if f.Changed("name") {
		job.Name = o.name
	}
	if f.Changed("quantity") {
		job.Quantity = o.quantity
	}
	if f.Changed("volume") {
		job.TargetVolume = o.volume
	}
	if f.Changed("radius") {
		job.ShapeParams.Radius = o.radius
	}
	if f.Changed("length") {
		job.ShapeParams.Length = o.length
	}
	if f.Changed("width") {
		job.ShapeParams.Width = o.width
	}
	if f.Changed("segments") {
		job.ShapeParams.Segments = o.segments
	}
	if f.Changed("resolution") {
		job.ShapeParams.Resolution = o.resolution
	}

	if f.Changed("layer-height") {
		job.Settings.LayerHeight = o.layerHeight
	}
	if f.Changed("tablet-height") {
		job.Settings.TabletHeight = o.tabletHeight
	}
	if f.Changed("line-width") {
		job.Settings.LineWidth = o.lineWidth
	}
	if f.Changed("spacing") {
		job.Settings.Spacing = o.spacing
	}
	if f.Changed("profile") {
		job.Settings.Profile = o.profile
	}
	if f.Changed("strict") {
		job.Settings.StrictVolume = o.strict
	}
	if f.Changed("dual") {
		job.Settings.HeadMode = model.HeadSingle
		if o.dual {
			job.Settings.HeadMode = model.HeadDual
		}
	}

	if o.dxfPath != "" {
		outline, warnings, err := importer.LoadCrossSection(o.dxfPath, job.Settings, job.Quantity)
		for _, w := range warnings {
			logging.Logger().Warn(w, "file", o.dxfPath)
		}
		if err != nil {
			return model.Job{}, err
		}
		job.Shape = model.ShapeCustom
		job.ShapeParams = model.ShapeParams{Custom: outline}
	}
	return job, nil
}

func buildWorksheet(e *env, o *generateOptions, job model.Job, dose formulation.DoseResult, apis []formulation.API) (export.Worksheet, error) {
	tag, err := language.Parse(o.lang)
	if err != nil {
		return export.Worksheet{}, fmt.Errorf("language %q: %w", o.lang, err)
	}
	store, err := project.LoadTemplates(e.templatesPath)
	if err != nil {
		return export.Worksheet{}, fmt.Errorf("load templates: %w", err)
	}
	lines, err := formulation.Breakdown(dose, apis, store.FindByProductType(o.productType), job.Quantity)
	if err != nil {
		return export.Worksheet{}, err
	}
	outline, err := shapes.OutlineFor(job.Shape, job.ShapeParams)
	if err != nil {
		return export.Worksheet{}, err
	}
	return export.Worksheet{
		JobID:       job.ID,
		ProductType: o.productType,
		Quantity:    job.Quantity,
		Dose:        dose,
		Lines:       lines,
		Shape:       job.Shape,
		HeadMode:    job.Settings.HeadMode,
		Outline:     outline,
		Placements:  gcode.Place(job.Quantity, job.Settings.Spacing),
		Language:    tag,
	}, nil
}
