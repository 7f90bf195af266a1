package wipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

func move(x, y float64) *gcode.Record {
	return gcode.NewRecord("G1").SetFloat("X", x).SetFloat("Y", y)
}

func TestDistTracker(t *testing.T) {
	moves := []*gcode.Record{move(0, 0), move(3, 4), move(3, 10)}
	tr := newDistTracker(newSliceSteps(moves))

	wantDists := []float64{0, 5, 11}
	for i, want := range wantDists {
		rec, d, ok, err := tr.next()
		require.NoError(t, err)
		require.True(t, ok, "step %d", i)
		assert.Same(t, moves[i], rec)
		assert.InDelta(t, want, d, 1e-9)
	}
	_, _, ok, err := tr.next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDistTrackerRestartable(t *testing.T) {
	moves := []*gcode.Record{move(0, 0), move(1, 0)}
	for run := 0; run < 2; run++ {
		tr := newDistTracker(newSliceSteps(moves))
		_, d0, _, err := tr.next()
		require.NoError(t, err)
		_, d1, _, err := tr.next()
		require.NoError(t, err)
		assert.Equal(t, 0.0, d0)
		assert.InDelta(t, 1.0, d1, 1e-9)
	}
}

func TestDistTrackerMissingCoordinate(t *testing.T) {
	moves := []*gcode.Record{move(0, 0), gcode.NewRecord("G1").SetFloat("X", 1)}
	tr := newDistTracker(newSliceSteps(moves))
	_, _, _, err := tr.next()
	require.NoError(t, err)
	_, _, _, err = tr.next()
	assert.True(t, errors.Is(err, errors.ErrMissingCoordinate))
}

func TestOscillatorForwardThenReversed(t *testing.T) {
	moves := []*gcode.Record{move(0, 0), move(1, 0), move(2, 0)}
	osc := newOscillator(moves)

	// Forward, reversed, forward again; the end points repeat at each flip.
	wantIdx := []int{0, 1, 2, 2, 1, 0, 0, 1, 2}
	for i, want := range wantIdx {
		rec, ok := osc.next()
		require.True(t, ok)
		assert.Same(t, moves[want], rec, "position %d", i)
	}
}

func TestOscillatorSingleMove(t *testing.T) {
	moves := []*gcode.Record{move(5, 5)}
	osc := newOscillator(moves)
	for i := 0; i < 4; i++ {
		rec, ok := osc.next()
		require.True(t, ok)
		assert.Same(t, moves[0], rec)
	}
}

func TestOscillatedDistanceAccumulates(t *testing.T) {
	// A 2-point path of length 4 bounced through the tracker: distance
	// keeps growing by 4 per leg, with zero-length steps at each flip.
	moves := []*gcode.Record{move(0, 0), move(4, 0)}
	tr := newDistTracker(newOscillator(moves))

	want := []float64{0, 4, 4, 8, 8, 12}
	for _, w := range want {
		_, d, ok, err := tr.next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, w, d, 1e-9)
	}
}

func TestPathLength(t *testing.T) {
	total, err := pathLength([]*gcode.Record{move(0, 0), move(3, 4), move(6, 8)})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, total, 1e-9)

	total, err = pathLength(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	total, err = pathLength([]*gcode.Record{move(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}
