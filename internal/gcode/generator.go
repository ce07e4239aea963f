package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/tabletpath/internal/calibrate"
	"github.com/piwi3910/tabletpath/internal/logging"
	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/shapes"
)

// Generator produces a tablet print program from a job.
type Generator struct {
	Settings model.PrintSettings
	profile  model.FirmwareProfile
}

func New(settings model.PrintSettings) *Generator {
	return NewWithProfile(settings, model.GetProfile(settings.Profile))
}

// NewWithProfile uses an explicit dialect, e.g. a user-defined profile
// loaded from disk, instead of looking one up by settings.Profile.
func NewWithProfile(settings model.PrintSettings, profile model.FirmwareProfile) *Generator {
	return &Generator{
		Settings: settings,
		profile:  profile,
	}
}

// Profile returns the firmware dialect the generator writes.
func (g *Generator) Profile() model.FirmwareProfile {
	return g.profile
}

// Generate builds the complete program for a job using the generator's
// settings; job.Settings is ignored. Configuration problems are reported
// before any line is produced and nothing partial is returned.
func (g *Generator) Generate(job model.Job) (Program, error) {
	job.Settings = g.Settings
	if err := job.Validate(); err != nil {
		return Program{}, fmt.Errorf("validate job: %w", err)
	}

	outline, err := shapes.OutlineFor(job.Shape, job.ShapeParams)
	if err != nil {
		return Program{}, fmt.Errorf("build %s outline: %w", job.Shape, err)
	}

	log := logging.Logger()
	numLayers := calibrate.LayerCount(g.Settings.TabletHeight, g.Settings.LayerHeight)
	cal := calibrate.Calibrate(outline, g.Settings.LineWidth, g.Settings.LayerHeight, numLayers, job.TargetVolume)
	if err := cal.Err(); err != nil {
		if g.Settings.StrictVolume {
			return Program{}, fmt.Errorf("calibrate %d layers: %w", numLayers, err)
		}
		log.Warn("path volume is zero, extruding unscaled",
			"shape", job.Shape, "layers", numLayers, "perimeter", cal.Perimeter)
	}
	log.Debug("calibrated",
		"shape", job.Shape,
		"layers", numLayers,
		"perimeter", cal.Perimeter,
		"layer_volume", cal.LayerVolume,
		"scale", cal.Scale)

	placements := Place(job.Quantity, g.Settings.Spacing)
	for _, w := range FormatOverlapWarnings(CheckTileOverlaps(outline, placements, g.Settings.LineWidth)) {
		log.Warn(w)
	}

	var b strings.Builder
	g.writeHeader(&b)
	for _, p := range placements {
		g.writeUnit(&b, outline, p, cal.Scale)
	}
	g.writeFooter(&b)

	prog := Program{Lines: strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")}
	log.Info("program generated", "job", job.ID, "units", job.Quantity, "lines", prog.Len())
	return prog, nil
}

// Synthesize returns the layer blocks for one unit: for each layer a Z
// move, one extruding move per outline segment, then retraction and
// counter resets. The trailing lift is included.
func (g *Generator) Synthesize(outline model.Outline, placement model.UnitPlacement, scale float64) []string {
	var b strings.Builder
	g.writeLayers(&b, outline, placement, scale)
	return strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
}

func (g *Generator) writeHeader(b *strings.Builder) {
	p := g.profile

	b.WriteString(p.Title + "\n")

	// Write startup codes
	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	for _, code := range p.MotionSet {
		b.WriteString(code + "\n")
	}

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	for _, code := range g.profile.EndCode {
		b.WriteString(code + "\n")
	}
}

func (g *Generator) writeUnit(b *strings.Builder, outline model.Outline, p model.UnitPlacement, scale float64) {
	b.WriteString(g.tableComment(strconv.Itoa(p.Index+1),
		fmt.Sprintf("%.1f", p.OffsetX), fmt.Sprintf("%.1f", p.OffsetY)))
	g.writeLayers(b, outline, p, scale)
}

func (g *Generator) writeLayers(b *strings.Builder, outline model.Outline, p model.UnitPlacement, scale float64) {
	prof := g.profile
	s := g.Settings
	placed := outline.Translate(p.OffsetX, p.OffsetY)
	numLayers := calibrate.LayerCount(s.TabletHeight, s.LayerHeight)

	for layer := 0; layer < numLayers; layer++ {
		z := float64(layer+1) * s.LayerHeight
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", prof.LinearMove, g.formatZ(z), num(prof.LayerFeed)))

		for j := 0; j+1 < len(placed); j++ {
			dist := outline[j].Dist(outline[j+1])
			vol := dist * s.LineWidth * s.LayerHeight * scale
			e, d := Split(vol, s.HeadMode)
			b.WriteString(g.move(placed[j+1], e, d) + "\n")
		}

		b.WriteString(g.retraction() + "\n")
		for _, code := range prof.ResetCode {
			b.WriteString(code + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("%s Z%s F%s\n", prof.LinearMove, num(prof.LiftZ), num(prof.LiftFeed)))
}

// move writes a linear move to pt. An extrusion field is omitted when its
// amount is exactly zero.
func (g *Generator) move(pt model.Point2D, e, d float64) string {
	p := g.profile
	line := fmt.Sprintf("%s X%s Y%s", p.LinearMove, g.format(pt.X), g.format(pt.Y))
	if e != 0 {
		line += " " + p.PrimaryAxis + g.formatE(e)
	}
	if d != 0 {
		line += " " + p.SecondaryAxis + g.formatE(d)
	}
	return line
}

// retraction returns the end-of-layer pull-back on both axes.
func (g *Generator) retraction() string {
	p := g.profile
	return fmt.Sprintf("%s %s-%s %s-%s F%s", p.LinearMove,
		p.PrimaryAxis, num(p.RetractPrimary),
		p.SecondaryAxis, num(p.RetractSecondary),
		num(p.RetractFeed))
}

// tableComment marks the start of a unit on the print table.
func (g *Generator) tableComment(index, x, y string) string {
	return fmt.Sprintf("%sBegin print table index:%s  Parameter offset x%s  y%s\n",
		g.profile.CommentPrefix, index, x, y)
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fixed(v, g.profile.CoordDecimals)
}

func (g *Generator) formatZ(v float64) string {
	return fixed(v, g.profile.ZDecimals)
}

func (g *Generator) formatE(v float64) string {
	return fixed(v, g.profile.ExtrusionDecimals)
}

// fixed formats v with the given decimals and folds "-0.00" into "0.00".
func fixed(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

// num formats a literal firmware parameter in its shortest form (1500, 2, 0.5).
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
