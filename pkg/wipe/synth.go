// Wipe sequence synthesis
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package wipe

import (
	"fmt"
	"math"

	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

const (
	// hopFeed is the feed rate for the synthesized travel hop.
	hopFeed = "9000"

	// landingWipeFeed is the feed rate for the un-extruded landing trace.
	landingWipeFeed = "3000"
)

// markerComment tags the injected region. It also breaks the retract/up/move
// shape, so a re-run never matches its own output.
const markerComment = "TYPE:Z-WIPE"

// synthesize builds the replacement sequence for a completed match. records
// is the whole parsed stream, used to reconstruct local geometry around the
// match window [st.start, st.end]. ok is false when the slot records do not
// carry the expected numeric values; the caller then replays the original
// window unchanged.
func (p *Processor) synthesize(records []*gcode.Record, st *matchState) ([]*gcode.Record, bool) {
	retract := st.filled["retract"]
	up := st.filled["up"]
	move := st.filled["move"]
	section := st.filled["section"] // nil when the marker was absent
	down := st.filled["down"]
	extrude := st.filled["extrude"]

	eRestore, err := extrude.Float("E")
	if err != nil {
		return nil, false
	}
	eRetract, err := retract.Float("E")
	if err != nil {
		return nil, false
	}
	zUp, err := up.Float("Z")
	if err != nil {
		return nil, false
	}
	zDown, err := down.Float("Z")
	if err != nil {
		return nil, false
	}

	out := []*gcode.Record{gcode.NewComment(markerComment)}

	// Raise the nozzle a bit to avoid sinking into the surface while we
	// retract.
	movesBefore, lastZ := scanContext(records, st.start-1, -1, p.opts)
	if lastZ != nil {
		raise := gcode.NewRecord("G0").SetFloat("Z", *lastZ+p.opts.ZRelief)
		raise.Comment = "raise a bit"
		out = append(out, raise)
	}

	distBefore, err := pathLength(movesBefore)
	if err != nil {
		p.noteFallback("takeoff context: %v", err)
		distBefore = 0
	}
	if takeoff := p.takeoffWipe(movesBefore, distBefore, retract, eRestore, eRetract); takeoff != nil {
		out = append(out, takeoff...)
	} else {
		// Not enough context moves, retract in place.
		p.noteFallback("takeoff wipe disabled, retracting in place")
		out = append(out, retract)
	}

	// Hop to the next location, raising Z in proportion to the distance
	// travelled but never below the originally planned hop height.
	hopDist := 0.0
	if len(movesBefore) > 0 {
		if d, err := planarDist(movesBefore[0], move); err == nil {
			hopDist = d
		}
	}
	mx, _ := move.Arg("X")
	my, _ := move.Arg("Y")
	hop := gcode.NewRecord("G0").Set("X", mx).Set("Y", my).
		SetFloat("Z", math.Max(zDown+p.opts.ZHopPerMM*hopDist, zUp)).
		Set("F", hopFeed)
	hop.Comment = "hop"
	out = append(out, hop)

	// We're there. Lower the nozzle again.
	lower := gcode.NewRecord("G0").SetFloat("Z", zDown+p.opts.ZRelief)
	lower.Comment = "lower a bit"
	out = append(out, lower)

	// The nozzle may have drooled during the move. Wipe again upon landing.
	movesAfter, _ := scanContext(records, st.end, +1, p.opts)
	distAfter, err := pathLength(movesAfter)
	if err != nil {
		p.noteFallback("landing context: %v", err)
		distAfter = 0
	}
	if landing := p.landingWipe(movesAfter, distAfter, extrude, eRestore, eRetract); landing != nil {
		out = append(out, landing...)
		if section != nil {
			out = append(out, section)
		}
		out = append(out, down)
	} else {
		p.noteFallback("landing wipe disabled, extruding in place")
		if section != nil {
			out = append(out, section)
		}
		out = append(out, down, extrude)
	}
	return out, true
}

// takeoffWipe traces the backward context while ramping extrusion from the
// pre-retract level down to the retracted level, then retraces the same
// steps in reverse without extruding, since retraction does not stop the
// flow instantaneously. Returns nil when there is no usable context or the
// wipe is disabled.
func (p *Processor) takeoffWipe(moves []*gcode.Record, total float64, retract *gcode.Record, eRestore, eRetract float64) []*gcode.Record {
	target := p.opts.takeoffTarget()
	if total <= 0 || target <= 0 {
		return nil
	}
	feed, _ := retract.Arg("F")

	tr := newDistTracker(newOscillator(moves))
	var outbound []*gcode.Record
	for {
		step, d, ok, err := tr.next()
		if err != nil || !ok {
			return nil
		}
		x, _ := step.Arg("X")
		y, _ := step.Arg("Y")
		rec := gcode.NewRecord("G1").Set("X", x).Set("Y", y).
			SetFloat("E", eRestore+(eRetract-eRestore)*math.Min(1, d/target)).
			Set("F", feed)
		rec.Comment = fmt.Sprintf("retract %.2f", d)
		outbound = append(outbound, rec)
		if d >= target {
			break
		}
	}

	out := append([]*gcode.Record{}, outbound...)
	for i := len(outbound) - 1; i >= 0; i-- {
		src := outbound[i]
		x, _ := src.Arg("X")
		y, _ := src.Arg("Y")
		rec := gcode.NewRecord("G1").Set("X", x).Set("Y", y).Set("F", feed)
		rec.Comment = src.Comment
		out = append(out, rec)
	}
	return out
}

// landingWipe traces the forward context without extruding, then retraces
// back to the landing point while ramping extrusion from the retracted level
// up to the pre-retract level. The retrace ends at the extrude slot's target
// extrusion value, so the original extrude record is not re-emitted.
// Returns nil when there is no usable context or the wipe is disabled.
func (p *Processor) landingWipe(moves []*gcode.Record, total float64, extrude *gcode.Record, eRestore, eRetract float64) []*gcode.Record {
	target := p.opts.landingTarget()
	if total <= 0 || target <= 0 {
		return nil
	}

	tr := newDistTracker(newOscillator(moves))
	var steps []*gcode.Record
	var out []*gcode.Record
	for {
		step, d, ok, err := tr.next()
		if err != nil || !ok {
			return nil
		}
		steps = append(steps, step)
		x, _ := step.Arg("X")
		y, _ := step.Arg("Y")
		rec := gcode.NewRecord("G1").Set("X", x).Set("Y", y).Set("F", landingWipeFeed)
		rec.Comment = fmt.Sprintf("wipe %.2f", d)
		out = append(out, rec)
		if d >= target {
			break
		}
	}

	feed, _ := extrude.Arg("F")
	reversed := make([]*gcode.Record, len(steps))
	for i, s := range steps {
		reversed[len(steps)-1-i] = s
	}
	tr = newDistTracker(newSliceSteps(reversed))
	for {
		step, d, ok, err := tr.next()
		if err != nil {
			return nil
		}
		if !ok {
			break
		}
		x, _ := step.Arg("X")
		y, _ := step.Arg("Y")
		rec := gcode.NewRecord("G1").Set("X", x).Set("Y", y).
			SetFloat("E", eRetract+(eRestore-eRetract)*math.Min(1, d/target)).
			Set("F", feed)
		rec.Comment = fmt.Sprintf("extrude %.2f", d)
		out = append(out, rec)
	}
	return out
}
