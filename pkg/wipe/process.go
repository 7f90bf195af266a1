// Stream driver for the nozzle wipe transform
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package wipe

import (
	"fmt"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
	"github.com/damiendr/cura-nozzlewipe/pkg/log"
	"github.com/damiendr/cura-nozzlewipe/pkg/metrics"
)

// relativeModeCmd switches the controller to relative positioning, which
// this transform cannot reconstruct geometry for.
const relativeModeCmd = "G91"

// Stats counts what happened during one transform run.
type Stats struct {
	Lines     int
	Matches   int
	Rewinds   int
	Fallbacks int
}

// Processor drives the pattern matcher across a whole input and replaces
// every completed match with a synthesized wipe sequence. Each Transform
// call resets the counters; a Processor is not safe for concurrent use.
type Processor struct {
	opts  Options
	log   *log.Logger
	coll  *metrics.Collector
	stats Stats
}

// NewProcessor creates a Processor with the given options.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		opts: opts,
		log:  log.GetLogger("wipe"),
	}
}

// SetMetrics attaches a metrics collector. Pass nil to detach.
func (p *Processor) SetMetrics(c *metrics.Collector) {
	p.coll = c
}

// Stats returns the counters from the most recent Transform call.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Transform rewrites the input lines, replacing every recognized
// retract/travel/re-extrude sequence with a wipe sequence and passing
// everything else through in order. It fails only on a relative-positioning
// selector; every other irregularity degrades to emitting the original
// input.
func (p *Processor) Transform(lines []string) ([]string, error) {
	records := make([]*gcode.Record, len(lines))
	for i, ln := range lines {
		records[i] = gcode.Parse(ln)
	}
	p.stats = Stats{Lines: len(lines)}
	if p.coll != nil {
		p.coll.Lines.Add(float64(len(lines)))
	}

	out := make([]string, 0, len(lines))
	st := newMatchState()
	for i := 0; i < len(records); {
		rec := records[i]
		if rec.Cmd == relativeModeCmd {
			return nil, errors.UnsupportedModeError(relativeModeCmd, i+1)
		}
		action, rewindTo := st.feed(rec, i)
		switch action {
		case feedConsumed:
			i++
		case feedPass:
			out = append(out, rec.String())
			i++
		case feedRewind:
			// Replay the line at the commit point as ordinary output and
			// restart matching fresh at the following index.
			p.stats.Rewinds++
			if p.coll != nil {
				p.coll.Rewinds.Inc()
			}
			out = append(out, records[rewindTo].String())
			i = rewindTo + 1
			st = newMatchState()
		case feedComplete:
			if repl, ok := p.synthesize(records, st); ok {
				p.stats.Matches++
				if p.coll != nil {
					p.coll.Matches.Inc()
					p.coll.WipePoints.Observe(float64(len(repl)))
				}
				p.log.Debug("matched hop pattern at lines %d..%d, emitting %d records",
					st.start+1, st.end+1, len(repl))
				for _, r := range repl {
					out = append(out, r.String())
				}
			} else {
				// Slot records without usable numbers: replay the window.
				p.noteFallback("match at lines %d..%d not synthesizable", st.start+1, st.end+1)
				for _, j := range st.bufIdx {
					out = append(out, records[j].String())
				}
			}
			i++
			st = newMatchState()
		}
	}

	// Input ended mid-match: flush the buffered records unchanged.
	for _, j := range st.bufIdx {
		out = append(out, records[j].String())
	}
	return out, nil
}

// noteFallback logs and counts a degraded synthesis step.
func (p *Processor) noteFallback(format string, args ...interface{}) {
	p.stats.Fallbacks++
	if p.coll != nil {
		p.coll.Fallbacks.Inc()
	}
	p.log.Debug("fallback: %s", fmt.Sprintf(format, args...))
}

// Transform is a convenience wrapper for a one-shot run.
func Transform(lines []string, opts Options) ([]string, error) {
	return NewProcessor(opts).Transform(lines)
}
