package gcode

import "strings"

// Program is an ordered sequence of firmware commands, one per line.
type Program struct {
	Lines []string
}

// String joins the program lines with newlines.
func (p Program) String() string {
	return strings.Join(p.Lines, "\n")
}

// Len returns the number of lines.
func (p Program) Len() int {
	return len(p.Lines)
}
