// TabletPath - toolpath synthesis for paste-extrusion tablet printers
//
// Turns a tablet shape, a dose and a batch size into a complete firmware
// program, or fills extrusion values into a hand-authored path template.
//
// Build:
//   go build -o tabletpath ./cmd/tabletpath
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o tabletpath.exe ./cmd/tabletpath
//   GOOS=darwin  GOARCH=arm64 go build -o tabletpath-darwin ./cmd/tabletpath

package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
