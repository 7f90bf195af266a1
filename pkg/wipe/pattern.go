// Hop pattern matching over parsed G-code records
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package wipe

import (
	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

// slot is one position in the hop pattern: an expected command plus the
// allowed argument-letter sets. An optional slot may be skipped without
// breaking the match.
type slot struct {
	name     string
	cmd      string
	argSets  []string // allowed letter sets, e.g. "FE"; "" means no args
	optional bool
}

// hopPattern is the six-step shape this transform recognizes:
//
//	G1 F3000 E929.45693   retract
//	G1 Z33.000            up
//	G0 F9000 X73.472 Y27.640   move (optionally with Z)
//	;TYPE:WALL-OUTER      section marker (optional)
//	G1 Z32.700            down
//	G1 F3000 E934.45693   extrude (optionally with X/Y)
var hopPattern = []slot{
	{name: "retract", cmd: "G1", argSets: []string{"FE"}},
	{name: "up", cmd: "G1", argSets: []string{"Z"}},
	{name: "move", cmd: "G0", argSets: []string{"FXY", "FXYZ"}},
	{name: "section", cmd: "", argSets: []string{""}, optional: true},
	{name: "down", cmd: "G1", argSets: []string{"Z"}},
	{name: "extrude", cmd: "G1", argSets: []string{"FE", "FEXY"}},
}

// matches reports whether a record satisfies this slot: same command and an
// argument-letter set equal to one of the allowed sets.
func (s slot) matches(rec *gcode.Record) bool {
	if rec.Cmd != s.cmd {
		return false
	}
	for _, set := range s.argSets {
		if rec.NumArgs() != len(set) {
			continue
		}
		ok := true
		for i := 0; i < len(set); i++ {
			if !rec.Has(set[i : i+1]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// feedAction is the matcher's verdict for one incoming record.
type feedAction int

const (
	// feedConsumed: the record filled a slot; more slots remain.
	feedConsumed feedAction = iota

	// feedComplete: the record filled the last slot; the match is done.
	feedComplete

	// feedPass: nothing had committed; emit the record unchanged.
	feedPass

	// feedRewind: a partial match fell apart; replay from the commit point.
	feedRewind
)

// matchState tracks one in-flight match attempt against hopPattern.
type matchState struct {
	slots  []slot
	filled map[string]*gcode.Record
	bufIdx []int // stream indices of consumed records, in order
	start  int   // commit point; -1 until the first slot commits
	end    int   // stream index of the last consumed record
}

func newMatchState() *matchState {
	return &matchState{
		slots:  hopPattern,
		filled: make(map[string]*gcode.Record, len(hopPattern)),
		start:  -1,
		end:    -1,
	}
}

// feed evaluates one record at stream index i. For feedRewind the returned
// index is the commit point to replay from; it is -1 otherwise.
//
// An optional slot that does not match is filled with nil and the same
// record is retried against the next slot, bounded by the fixed slot count.
func (m *matchState) feed(rec *gcode.Record, i int) (feedAction, int) {
	for len(m.slots) > 0 {
		s := m.slots[0]
		if s.matches(rec) {
			if m.start < 0 {
				m.start = i
			}
			m.filled[s.name] = rec
			m.bufIdx = append(m.bufIdx, i)
			m.end = i
			m.slots = m.slots[1:]
			if len(m.slots) == 0 {
				return feedComplete, -1
			}
			return feedConsumed, -1
		}
		if s.optional {
			m.filled[s.name] = nil
			m.slots = m.slots[1:]
			continue
		}
		if m.start >= 0 {
			return feedRewind, m.start
		}
		return feedPass, -1
	}
	// No slots remain: the caller should have reset after feedComplete.
	return feedPass, -1
}
