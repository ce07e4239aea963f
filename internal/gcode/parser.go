package gcode

import (
	"math"
	"sort"
	"strings"
)

// MoveType represents the kind of toolpath movement.
type MoveType int

const (
	MoveTravel  MoveType = iota // XY motion without extrusion
	MoveExtrude                 // XY motion depositing paste on either axis
	MoveLayer                   // Z-only motion (layer change or lift)
	MoveRetract                 // Negative extrusion without XY motion
)

// Move represents a single parsed movement from a program. E and D are
// the amounts extruded by this move on each axis, regardless of whether
// the program used relative or absolute extrusion.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	E        float64
	D        float64
	FeedRate float64
	Tool     int
}

// ParseProgram parses program text into structured moves. It tracks
// absolute XYZ position, the active tool, M82/M83 extrusion mode and
// G92 counter resets. Lines that are not G0/G1 moves only update state.
func ParseProgram(code string) []Move {
	var moves []Move

	// Current machine state
	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	tool := 0
	relative := true
	lastE, lastD := 0.0, 0.0

	for _, line := range strings.Split(code, "\n") {
		cmd, ok := ParseCommand(line)
		if !ok {
			continue
		}

		switch {
		case cmd.Opcode == "M82":
			relative = false
			continue
		case cmd.Opcode == "M83":
			relative = true
			continue
		case cmd.Opcode == "G92":
			if v, ok := cmd.Value('E'); ok {
				lastE = v
			}
			if v, ok := cmd.Value('D'); ok {
				lastD = v
			}
			continue
		case strings.HasPrefix(cmd.Opcode, "T"):
			if n, ok := toolNumber(cmd.Opcode); ok {
				tool = n
			}
			continue
		case cmd.Opcode != "G0" && cmd.Opcode != "G00" && !cmd.IsLinearMove():
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		if v, ok := cmd.Value('X'); ok {
			newX = v
		}
		if v, ok := cmd.Value('Y'); ok {
			newY = v
		}
		if v, ok := cmd.Value('Z'); ok {
			newZ = v
		}
		if v, ok := cmd.Value('F'); ok {
			newFeed = v
		}

		var e, d float64
		if v, ok := cmd.Value('E'); ok {
			if relative {
				e = v
			} else {
				e = v - lastE
				lastE = v
			}
		}
		if v, ok := cmd.Value('D'); ok {
			if relative {
				d = v
			} else {
				d = v - lastD
				lastD = v
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(curX, curY, curZ, newX, newY, newZ, e, d),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			E:        e,
			D:        d,
			FeedRate: newFeed,
			Tool:     tool,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

func toolNumber(op string) (int, bool) {
	n := 0
	if len(op) < 2 {
		return 0, false
	}
	for _, c := range op[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(fromX, fromY, fromZ, toX, toY, toZ, e, d float64) MoveType {
	hasXY := fromX != toX || fromY != toY
	switch {
	case hasXY && (e > 0 || d > 0):
		return MoveExtrude
	case hasXY:
		return MoveTravel
	case e < 0 || d < 0:
		return MoveRetract
	case math.Abs(toZ-fromZ) > 0.0001:
		return MoveLayer
	default:
		return MoveTravel
	}
}

// Summary holds aggregate statistics of a parsed program.
type Summary struct {
	Moves        int
	ExtrudeMoves int
	Retractions  int
	Layers       int     // Distinct Z heights at which extrusion happened
	Units        int     // Extrusion runs separated by a drop in Z
	TotalE       float64 // Net primary axis extrusion
	TotalD       float64 // Net secondary axis extrusion
	ExtrudedPath float64 // mm of XY travel while extruding
	MinX, MinY   float64
	MaxX, MaxY   float64
	MaxZ         float64
	ToolsUsed    []int
}

// Summarize aggregates moves into program statistics. Bounds cover
// extruding moves only.
func Summarize(moves []Move) Summary {
	var s Summary
	s.Moves = len(moves)

	zs := make(map[float64]bool)
	tools := make(map[int]bool)
	first := true
	extruded := false

	for _, m := range moves {
		s.TotalE += m.E
		s.TotalD += m.D
		if m.ToZ > s.MaxZ {
			s.MaxZ = m.ToZ
		}

		switch m.Type {
		case MoveRetract:
			s.Retractions++
		case MoveLayer:
			if extruded && m.ToZ < m.FromZ {
				s.Units++
				extruded = false
			}
		case MoveExtrude:
			s.ExtrudeMoves++
			extruded = true
			zs[m.ToZ] = true
			tools[m.Tool] = true
			s.ExtrudedPath += math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
			for _, p := range [][2]float64{{m.FromX, m.FromY}, {m.ToX, m.ToY}} {
				if first {
					s.MinX, s.MaxX, s.MinY, s.MaxY = p[0], p[0], p[1], p[1]
					first = false
					continue
				}
				s.MinX = math.Min(s.MinX, p[0])
				s.MaxX = math.Max(s.MaxX, p[0])
				s.MinY = math.Min(s.MinY, p[1])
				s.MaxY = math.Max(s.MaxY, p[1])
			}
		}
	}
	if extruded {
		s.Units++
	}

	s.Layers = len(zs)
	for t := range tools {
		s.ToolsUsed = append(s.ToolsUsed, t)
	}
	sort.Ints(s.ToolsUsed)
	return s
}
