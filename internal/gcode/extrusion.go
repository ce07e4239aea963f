package gcode

import "github.com/piwi3910/tabletpath/internal/model"

// Split divides a deposited volume between the primary and secondary
// extrusion axes. Single-head puts everything on the primary axis; dual-head
// gives each axis exactly half.
func Split(volume float64, mode model.HeadMode) (primary, secondary float64) {
	if mode == model.HeadDual {
		half := volume / 2
		return half, half
	}
	return volume, 0
}
