package gcode

import (
	"fmt"

	"github.com/piwi3910/tabletpath/internal/model"
)

// TileOverlap reports two units whose deposited paths would touch on the
// print table.
type TileOverlap struct {
	UnitA    int     // 1-based unit index
	UnitB    int     // 1-based unit index
	OverlapX float64 // mm of overlap along X
	OverlapY float64 // mm of overlap along Y
}

// CheckTileOverlaps compares the footprint of every placed unit against
// its grid neighbours. The footprint is the outline's bounding box grown
// by half a line width on every side, since the bead is centred on the
// path. Only the right, lower and diagonal neighbours are visited, so
// each pair is reported at most once.
func CheckTileOverlaps(outline model.Outline, placements []model.UnitPlacement, lineWidth float64) []TileOverlap {
	if len(placements) < 2 || len(outline) == 0 {
		return nil
	}

	min, max := outline.BoundingBox()
	half := lineWidth / 2
	min.X -= half
	min.Y -= half
	max.X += half
	max.Y += half

	cols := Columns(len(placements))
	var overlaps []TileOverlap

	for i, a := range placements {
		row, col := i/cols, i%cols
		for _, nb := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
			r, c := row+nb[0], col+nb[1]
			if c < 0 || c >= cols {
				continue
			}
			j := r*cols + c
			if j >= len(placements) {
				continue
			}
			b := placements[j]
			ox := footprintOverlap(a.OffsetX+min.X, a.OffsetX+max.X, b.OffsetX+min.X, b.OffsetX+max.X)
			oy := footprintOverlap(a.OffsetY+min.Y, a.OffsetY+max.Y, b.OffsetY+min.Y, b.OffsetY+max.Y)
			if ox > 0 && oy > 0 {
				overlaps = append(overlaps, TileOverlap{
					UnitA:    a.Index + 1,
					UnitB:    b.Index + 1,
					OverlapX: ox,
					OverlapY: oy,
				})
			}
		}
	}
	return overlaps
}

// footprintOverlap returns the length shared by [a0,a1] and [b0,b1], or 0.
func footprintOverlap(a0, a1, b0, b1 float64) float64 {
	lo := a0
	if b0 > lo {
		lo = b0
	}
	hi := a1
	if b1 < hi {
		hi = b1
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// FormatOverlapWarnings produces human-readable warning messages from overlap data.
func FormatOverlapWarnings(overlaps []TileOverlap) []string {
	var warnings []string
	for _, o := range overlaps {
		warnings = append(warnings, fmt.Sprintf(
			"Units %d and %d overlap by %.2f x %.2f mm; increase spacing",
			o.UnitA, o.UnitB, o.OverlapX, o.OverlapY))
	}
	return warnings
}
