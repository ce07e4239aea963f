package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// Field is one address word of a command, e.g. X12.5. Raw keeps the
// number exactly as written so re-serialising never changes precision.
type Field struct {
	Letter byte
	Raw    string
}

// Command is a parsed firmware command line.
type Command struct {
	Opcode  string  // G1, G92, M83, T1...
	Fields  []Field // In source order
	Comment string  // Text after ';', without the marker
}

// wordRe matches one address word. A lowercase e followed by digits is an
// exponent (X1e-3); an uppercase E always starts a new word, so compact
// lines such as G1X1E-3 keep their extrusion field.
var wordRe = regexp.MustCompile(`([A-Za-z])\s*([-+]?\d*\.?\d*(?:e[-+]?\d+)?)`)

// ParseCommand parses a single line. It reports false for blank and
// comment-only lines. Parenthetical comments are dropped.
func ParseCommand(line string) (Command, bool) {
	var cmd Command

	code := line
	if idx := strings.Index(code, ";"); idx >= 0 {
		cmd.Comment = strings.TrimSpace(code[idx+1:])
		code = code[:idx]
	}
	for {
		start := strings.Index(code, "(")
		if start < 0 {
			break
		}
		end := strings.Index(code[start:], ")")
		if end < 0 {
			code = code[:start]
			break
		}
		code = code[:start] + " " + code[start+end+1:]
	}

	matches := wordRe.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return cmd, false
	}

	cmd.Opcode = strings.ToUpper(matches[0][1]) + matches[0][2]
	for _, m := range matches[1:] {
		cmd.Fields = append(cmd.Fields, Field{
			Letter: upper(m[1][0]),
			Raw:    m[2],
		})
	}
	return cmd, true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// Has reports whether the command carries a field for letter.
func (c Command) Has(letter byte) bool {
	for _, f := range c.Fields {
		if f.Letter == letter {
			return true
		}
	}
	return false
}

// Value returns the numeric value of the first field for letter.
func (c Command) Value(letter byte) (float64, bool) {
	for _, f := range c.Fields {
		if f.Letter != letter {
			continue
		}
		v, err := strconv.ParseFloat(f.Raw, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Without returns a copy of the command with every field for letter removed.
func (c Command) Without(letter byte) Command {
	out := c
	out.Fields = make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Letter != letter {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// With returns a copy of the command with a field appended.
func (c Command) With(letter byte, raw string) Command {
	out := c
	out.Fields = make([]Field, len(c.Fields), len(c.Fields)+1)
	copy(out.Fields, c.Fields)
	out.Fields = append(out.Fields, Field{Letter: letter, Raw: raw})
	return out
}

// IsLinearMove reports whether the opcode is G1/G01.
func (c Command) IsLinearMove() bool {
	return c.Opcode == "G1" || c.Opcode == "G01"
}

// IsPlanarMotion reports a linear move carrying at least one numeric X
// or Y field.
func (c Command) IsPlanarMotion() bool {
	if !c.IsLinearMove() {
		return false
	}
	_, okX := c.Value('X')
	_, okY := c.Value('Y')
	return okX || okY
}

// String serialises the command as "OP A1 B2 ;comment".
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Opcode)
	for _, f := range c.Fields {
		b.WriteByte(' ')
		b.WriteByte(f.Letter)
		b.WriteString(f.Raw)
	}
	if c.Comment != "" {
		b.WriteString(" ;")
		b.WriteString(c.Comment)
	}
	return b.String()
}
