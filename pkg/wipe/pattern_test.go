package wipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

var hopLines = []string{
	"G1 F3000 E929.45693",
	"G1 Z33.000",
	"G0 F9000 X73.472 Y27.640",
	";TYPE:WALL-OUTER",
	"G1 Z32.700",
	"G1 F3000 E934.45693",
}

func feedAll(t *testing.T, st *matchState, records []*gcode.Record, base int) feedAction {
	t.Helper()
	last := feedPass
	for i, rec := range records {
		action, _ := st.feed(rec, base+i)
		last = action
		if action == feedComplete || action == feedRewind {
			return action
		}
	}
	return last
}

func TestMatchFullPattern(t *testing.T) {
	st := newMatchState()
	action := feedAll(t, st, parseAll(hopLines), 10)
	require.Equal(t, feedComplete, action)

	assert.Equal(t, 10, st.start)
	assert.Equal(t, 15, st.end)
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15}, st.bufIdx)
	for _, name := range []string{"retract", "up", "move", "section", "down", "extrude"} {
		assert.NotNil(t, st.filled[name], "slot %s", name)
	}
}

func TestMatchWithoutSection(t *testing.T) {
	lines := append([]string{}, hopLines[:3]...)
	lines = append(lines, hopLines[4:]...) // drop the ;TYPE comment

	st := newMatchState()
	action := feedAll(t, st, parseAll(lines), 0)
	require.Equal(t, feedComplete, action)
	// The optional slot is filled with nil and the record retried on the
	// next slot.
	assert.Nil(t, st.filled["section"])
	assert.NotNil(t, st.filled["down"])
	assert.Equal(t, []int{0, 1, 2, 3, 4}, st.bufIdx)
}

func TestMatchMoveWithZ(t *testing.T) {
	lines := append([]string{}, hopLines...)
	lines[2] = "G0 F9000 X73.472 Y27.640 Z33.1"
	st := newMatchState()
	assert.Equal(t, feedComplete, feedAll(t, st, parseAll(lines), 0))
}

func TestMatchExtrudeWithXY(t *testing.T) {
	lines := append([]string{}, hopLines...)
	lines[5] = "G1 F3000 X73.5 Y27.7 E934.45693"
	st := newMatchState()
	assert.Equal(t, feedComplete, feedAll(t, st, parseAll(lines), 0))
}

func TestNoCommitPassThrough(t *testing.T) {
	st := newMatchState()
	action, rewind := st.feed(gcode.Parse("G1 X1 Y1 E5"), 0)
	assert.Equal(t, feedPass, action)
	assert.Equal(t, -1, rewind)
	assert.Equal(t, -1, st.start)
}

func TestRewindOnBrokenMatch(t *testing.T) {
	st := newMatchState()
	action, _ := st.feed(gcode.Parse("G1 F3000 E929.45693"), 7)
	require.Equal(t, feedConsumed, action)

	// A printing move instead of the expected lift breaks the match.
	action, rewind := st.feed(gcode.Parse("G1 X1 Y1 E930"), 8)
	assert.Equal(t, feedRewind, action)
	assert.Equal(t, 7, rewind)
}

func TestSlotShapeIsExact(t *testing.T) {
	// A retract with an extra letter must not open a match.
	st := newMatchState()
	action, _ := st.feed(gcode.Parse("G1 F3000 E929.45693 S1"), 0)
	assert.Equal(t, feedPass, action)

	// G1 instead of G0 for the travel move breaks the match.
	st = newMatchState()
	st.feed(gcode.Parse("G1 F3000 E929.45693"), 0)
	st.feed(gcode.Parse("G1 Z33.000"), 1)
	action, rewind := st.feed(gcode.Parse("G1 F9000 X73.472 Y27.640"), 2)
	assert.Equal(t, feedRewind, action)
	assert.Equal(t, 0, rewind)
}
