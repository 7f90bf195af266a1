package wipe

import (
	"strings"

	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

// maxContextMoves bounds how many travel moves a context scan collects.
const maxContextMoves = 20

// featureTypeMarker is the slicer comment that introduces a printed-feature
// section, e.g. ";TYPE:WALL-OUTER".
const featureTypeMarker = "TYPE:"

// scanContext walks records starting at from and stepping by step (+1
// forward, -1 backward), collecting consecutive X/Y moves adjacent to a
// match window and the most recently known Z height.
//
// Collection stops permanently when a feature-type marker is crossed (only
// with Options.SameType), when a record carries a Z argument (captured as
// lastZ), or when maxContextMoves are collected. Scanning itself continues
// past the end of collection until a Z height has been seen or the input is
// exhausted. lastZ is nil if no Z was seen in the window.
func scanContext(records []*gcode.Record, from, step int, opts Options) (moves []*gcode.Record, lastZ *float64) {
	collect := true
	for i := from; i >= 0 && i < len(records); i += step {
		rec := records[i]
		if opts.SameType && strings.Contains(rec.Comment, featureTypeMarker) {
			collect = false
		}
		if rec.Has("Z") {
			if z, err := rec.Float("Z"); err == nil {
				lastZ = &z
			}
			collect = false
		}
		if collect && rec.Has("X") && rec.Has("Y") {
			moves = append(moves, rec)
		}
		if len(moves) == maxContextMoves {
			collect = false
		}
		if !collect && lastZ != nil {
			break
		}
	}
	return moves, lastZ
}
