package gcode

import (
	"math"

	"github.com/piwi3910/tabletpath/internal/model"
)

// Columns returns the grid width for quantity units: ceil(sqrt(quantity)).
func Columns(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(quantity))))
}

// Place lays quantity units out row-major on a square-ish grid with the
// given pitch. Unit i lands at (col*spacing, row*spacing).
func Place(quantity int, spacing float64) []model.UnitPlacement {
	if quantity <= 0 {
		return nil
	}
	cols := Columns(quantity)
	placements := make([]model.UnitPlacement, quantity)
	for i := range placements {
		row := i / cols
		col := i % cols
		placements[i] = model.UnitPlacement{
			Index:   i,
			OffsetX: float64(col) * spacing,
			OffsetY: float64(row) * spacing,
		}
	}
	return placements
}
