package gcode

import (
	"strconv"
	"strings"

	"github.com/piwi3910/tabletpath/internal/calibrate"
	"github.com/piwi3910/tabletpath/internal/logging"
	"github.com/piwi3910/tabletpath/internal/model"
)

// InjectResult is an augmented template.
type InjectResult struct {
	Lines    []string
	Modified int  // Motion lines that received an extrusion value
	Switched bool // A head switch was emitted
}

// String joins the augmented lines with newlines.
func (r InjectResult) String() string {
	return strings.Join(r.Lines, "\n")
}

// SwitchIndex returns the motion-line index at which a dual-head template
// hands over to the second head: half the expected lines, or one past the
// end for a single head so the switch is never reached.
func SwitchIndex(totalLines int, dualHead bool) int {
	if dualHead {
		return totalLines / 2
	}
	return totalLines + 1
}

// CountMotion returns the number of planar motion lines in a template.
func CountMotion(lines []string) int {
	n := 0
	for _, line := range lines {
		if cmd, ok := ParseCommand(line); ok && cmd.IsPlanarMotion() {
			n++
		}
	}
	return n
}

// Inject writes the default dialect. See Generator.Inject.
func Inject(lines []string, ePerLine float64, dualHead bool, switchIndex int) InjectResult {
	return New(model.DefaultSettings()).Inject(lines, ePerLine, dualHead, switchIndex)
}

// Inject adds a cumulative extrusion value to every planar motion line of
// an externally authored template. Extrusion fields already on the line,
// for either head, are replaced, so feeding the output back in yields the
// same values.
// Other lines pass through untouched; malformed input is never an error.
//
// With dualHead set, the head-select and feed directives for the second
// head are emitted right before the motion line whose zero-based index
// equals switchIndex. The cumulative counter continues across the switch.
func (g *Generator) Inject(lines []string, ePerLine float64, dualHead bool, switchIndex int) InjectResult {
	p := g.profile
	res := InjectResult{Lines: make([]string, 0, len(lines)+2)}

	var total float64
	for _, line := range lines {
		cmd, ok := ParseCommand(line)
		if !ok || !cmd.IsPlanarMotion() {
			res.Lines = append(res.Lines, line)
			continue
		}

		if dualHead && !res.Switched && res.Modified == switchIndex {
			res.Lines = append(res.Lines, g.toolSelect(1)+" "+p.CommentPrefix+"switch to second head", p.InjectFeed)
			res.Switched = true
		}

		total += ePerLine
		cmd = cmd.Without(p.PrimaryAxis[0]).Without(p.SecondaryAxis[0]).
			With(p.PrimaryAxis[0], formatCumulative(total))
		res.Lines = append(res.Lines, cmd.String())
		res.Modified++
	}

	logging.Logger().Info("template injected",
		"motion_lines", res.Modified,
		"e_per_line", ePerLine,
		"dual_head", dualHead,
		"switched", res.Switched)
	return res
}

// InjectProgram injects a template and prepends the tool-0 preamble that
// puts the printer in a known state before the first move. The mode codes
// come from the profile's InjectPreamble.
func (g *Generator) InjectProgram(lines []string, ePerLine float64, dualHead bool, switchIndex int) InjectResult {
	p := g.profile
	res := g.Inject(lines, ePerLine, dualHead, switchIndex)

	preamble := make([]string, 0, len(p.InjectPreamble)+3+len(res.Lines))
	preamble = append(preamble,
		g.toolSelect(0)+" "+p.CommentPrefix+"must be in tool 0 state",
		strings.TrimSuffix(g.tableComment("-1", "18", "18"), "\n"))
	preamble = append(preamble, p.InjectPreamble...)
	preamble = append(preamble, p.InjectFeed)
	res.Lines = append(preamble, res.Lines...)
	return res
}

func (g *Generator) toolSelect(head int) string {
	if head < len(g.profile.ToolSelect) {
		return g.profile.ToolSelect[head]
	}
	return "T" + strconv.Itoa(head)
}

// formatCumulative rounds to 4 places and prints the shortest decimal
// that round-trips, always with a fractional part: 0.5, 1.0, 0.3333.
func formatCumulative(v float64) string {
	s := strconv.FormatFloat(calibrate.Round(v, 4), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
