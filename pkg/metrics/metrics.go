// Metrics collection for the nozzle wipe post-processor
//
// Counters for one transform run on a private Prometheus registry, dumped
// in Prometheus text format after the run.
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector bundles the transform run metrics.
type Collector struct {
	reg *prometheus.Registry

	// Lines counts input lines seen.
	Lines prometheus.Counter

	// Matches counts completed hop-pattern matches.
	Matches prometheus.Counter

	// Rewinds counts partial matches that fell apart.
	Rewinds prometheus.Counter

	// Fallbacks counts degraded synthesis steps.
	Fallbacks prometheus.Counter

	// WipePoints tracks the number of records emitted per wipe sequence.
	WipePoints prometheus.Histogram
}

// NewCollector creates a Collector with all metrics registered on a fresh
// registry.
func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nozzlewipe_lines_total",
			Help: "Input lines processed.",
		}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nozzlewipe_matches_total",
			Help: "Hop-pattern matches rewritten.",
		}),
		Rewinds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nozzlewipe_rewinds_total",
			Help: "Partial matches replayed as pass-through.",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nozzlewipe_fallbacks_total",
			Help: "Wipe steps degraded to in-place retract/extrude.",
		}),
		WipePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nozzlewipe_wipe_points",
			Help:    "Records emitted per synthesized wipe sequence.",
			Buckets: prometheus.LinearBuckets(5, 10, 8),
		}),
	}
	c.reg.MustRegister(c.Lines, c.Matches, c.Rewinds, c.Fallbacks, c.WipePoints)
	return c
}

// Registry exposes the underlying registry, e.g. for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Dump writes all metrics to w in Prometheus text format.
func (c *Collector) Dump(w io.Writer) error {
	families, err := c.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
