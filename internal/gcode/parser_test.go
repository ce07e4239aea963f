package gcode

import (
	"testing"

	"github.com/piwi3910/tabletpath/internal/model"
)

func TestParseProgram_Empty(t *testing.T) {
	moves := ParseProgram("")
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParseProgram_CommentsOnly(t *testing.T) {
	code := `; This is a comment
;Begin print table index:1  Parameter offset x0.0  y0.0
(parenthetical comment)
`
	moves := ParseProgram(code)
	if len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParseProgram_ExtrudeMove(t *testing.T) {
	code := "G1 X10.00 Y0.00 F3000\nG1 Z0.30 F1500\nG1 X10.00 Y5.00 E1.250 D1.250\n"
	moves := ParseProgram(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	if moves[0].Type != MoveTravel {
		t.Errorf("expected MoveTravel, got %d", moves[0].Type)
	}
	if moves[1].Type != MoveLayer || moves[1].ToZ != 0.3 {
		t.Errorf("expected MoveLayer to 0.3, got %d to %.2f", moves[1].Type, moves[1].ToZ)
	}
	m := moves[2]
	if m.Type != MoveExtrude {
		t.Errorf("expected MoveExtrude, got %d", m.Type)
	}
	if m.FromX != 10 || m.FromY != 0 || m.ToY != 5 {
		t.Errorf("unexpected coordinates %+v", m)
	}
	if m.E != 1.25 || m.D != 1.25 {
		t.Errorf("expected E=D=1.25, got E=%.3f D=%.3f", m.E, m.D)
	}
	if m.FeedRate != 1500 {
		t.Errorf("expected modal feed 1500, got %.0f", m.FeedRate)
	}
}

func TestParseProgram_Retract(t *testing.T) {
	moves := ParseProgram("G1 E-2 D-2 F1800")
	if len(moves) != 1 || moves[0].Type != MoveRetract {
		t.Fatalf("expected one retract move, got %+v", moves)
	}
	if moves[0].E != -2 || moves[0].D != -2 {
		t.Errorf("expected -2/-2, got %.1f/%.1f", moves[0].E, moves[0].D)
	}
}

func TestParseProgram_AbsoluteExtrusionWithReset(t *testing.T) {
	code := `M82
G1 X1 Y0 E0.5
G1 X2 Y0 E1.0
G1 X3 Y0 E1.5
G92 E0
G1 X4 Y0 E0.5
`
	moves := ParseProgram(code)
	if len(moves) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(moves))
	}
	for i, m := range moves {
		if m.E != 0.5 {
			t.Errorf("move %d: expected delta 0.5, got %.3f", i, m.E)
		}
	}
}

func TestParseProgram_RelativeCumulativeValues(t *testing.T) {
	// Under M83 every E value is its own increment.
	moves := ParseProgram("M83\nG1 X1 Y0 E0.5\nG1 X2 Y0 E1.0\n")
	if moves[0].E != 0.5 || moves[1].E != 1.0 {
		t.Errorf("unexpected relative deltas %.1f %.1f", moves[0].E, moves[1].E)
	}
}

func TestParseProgram_ToolTracking(t *testing.T) {
	code := "T0\nG1 X1 Y1 E1\nT1 ;switch to second head\nG1 F900\nG1 X2 Y2 E1\n"
	moves := ParseProgram(code)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	if moves[0].Tool != 0 || moves[2].Tool != 1 {
		t.Errorf("unexpected tools %d %d", moves[0].Tool, moves[2].Tool)
	}
	sum := Summarize(moves)
	if len(sum.ToolsUsed) != 2 || sum.ToolsUsed[0] != 0 || sum.ToolsUsed[1] != 1 {
		t.Errorf("expected tools [0 1], got %v", sum.ToolsUsed)
	}
}

func TestParseProgram_IgnoresNonMotion(t *testing.T) {
	moves := ParseProgram("G21\nG90\nM201 E8000 D8000 X1000 Y1000 Z200 W200\nG28\n")
	if len(moves) != 0 {
		t.Errorf("expected setup codes to produce no moves, got %d", len(moves))
	}
}

func TestSummarize_GeneratedProgram(t *testing.T) {
	prog, err := New(model.DefaultSettings()).Generate(newTestJob(3))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sum := Summarize(ParseProgram(prog.String()))

	if sum.Units != 3 {
		t.Errorf("expected 3 units, got %d", sum.Units)
	}
	if sum.Layers != 12 {
		t.Errorf("expected 12 layers, got %d", sum.Layers)
	}
	if sum.ExtrudeMoves != 3*12*16 {
		t.Errorf("expected %d extrude moves, got %d", 3*12*16, sum.ExtrudeMoves)
	}
	if sum.Retractions != 3*12 {
		t.Errorf("expected %d retractions, got %d", 3*12, sum.Retractions)
	}
	if sum.TotalD != -2*3*12 {
		t.Errorf("single head should only retract on D, got %.3f", sum.TotalD)
	}
	if sum.MaxZ != 5 {
		t.Errorf("expected lift to Z5, got %.2f", sum.MaxZ)
	}
	// 3 units on a 2x2 grid at 24 mm: x in [-6, 30], y in [-6, 30].
	if sum.MinX > -5.9 || sum.MaxX < 29.9 || sum.MinY > -5.9 || sum.MaxY < 29.9 {
		t.Errorf("unexpected bounds [%.2f,%.2f]x[%.2f,%.2f]", sum.MinX, sum.MaxX, sum.MinY, sum.MaxY)
	}
}
