package wipe

import (
	"math"

	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

// stepper yields records one at a time. ok is false once the source is
// exhausted; an oscillator never exhausts.
type stepper interface {
	next() (*gcode.Record, bool)
}

// sliceSteps walks a record slice once, front to back.
type sliceSteps struct {
	moves []*gcode.Record
	idx   int
}

func newSliceSteps(moves []*gcode.Record) *sliceSteps {
	return &sliceSteps{moves: moves}
}

func (s *sliceSteps) next() (*gcode.Record, bool) {
	if s.idx >= len(s.moves) {
		return nil, false
	}
	rec := s.moves[s.idx]
	s.idx++
	return rec, true
}

// oscillator turns a finite move sequence into an endless back-and-forth
// walk: the sequence forward, then reversed, forward again, and so on. The
// end points repeat across each direction flip, contributing zero distance.
// Consumers must stop on their own condition; see the synthesizer's
// distance cutoffs.
type oscillator struct {
	moves   []*gcode.Record
	idx     int
	reverse bool
}

func newOscillator(moves []*gcode.Record) *oscillator {
	return &oscillator{moves: moves}
}

func (o *oscillator) next() (*gcode.Record, bool) {
	if len(o.moves) == 0 {
		return nil, false
	}
	if o.idx >= len(o.moves) {
		o.idx = 0
		o.reverse = !o.reverse
	}
	i := o.idx
	if o.reverse {
		i = len(o.moves) - 1 - o.idx
	}
	o.idx++
	return o.moves[i], true
}

// planarDist returns the 2D euclidean distance between two records' X/Y.
func planarDist(a, b *gcode.Record) (float64, error) {
	ax, err := a.Float("X")
	if err != nil {
		return 0, err
	}
	ay, err := a.Float("Y")
	if err != nil {
		return 0, err
	}
	bx, err := b.Float("X")
	if err != nil {
		return 0, err
	}
	by, err := b.Float("Y")
	if err != nil {
		return 0, err
	}
	return math.Hypot(ax-bx, ay-by), nil
}

// distTracker pairs each record from its source with the cumulative planar
// path length from the first record. The first step is at distance 0.
// Restart by building a fresh tracker.
type distTracker struct {
	src  stepper
	last *gcode.Record
	dist float64
}

func newDistTracker(src stepper) *distTracker {
	return &distTracker{src: src}
}

// next returns the following (record, cumulative distance) pair. ok is false
// when the source is exhausted. A record lacking X or Y yields a
// MISSING_COORDINATE error.
func (t *distTracker) next() (*gcode.Record, float64, bool, error) {
	rec, ok := t.src.next()
	if !ok {
		return nil, 0, false, nil
	}
	if t.last != nil {
		delta, err := planarDist(rec, t.last)
		if err != nil {
			return nil, 0, false, err
		}
		t.dist += delta
	}
	t.last = rec
	return rec, t.dist, true, nil
}

// pathLength returns the total planar length of a move sequence, 0 for
// sequences shorter than two moves.
func pathLength(moves []*gcode.Record) (float64, error) {
	tr := newDistTracker(newSliceSteps(moves))
	total := 0.0
	for {
		_, d, ok, err := tr.next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return total, nil
		}
		total = d
	}
}
