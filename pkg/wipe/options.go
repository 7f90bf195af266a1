// Package wipe rewrites a G-code stream to insert nozzle-cleaning maneuvers
// around every retract/travel/re-extrude sequence it recognizes.
//
// The matched sequence is replaced by: a small lift, a wipe along the
// already-deposited path while retraction ramps down, the original travel hop
// with a distance-proportional height margin, a lowering move, and a
// symmetric wipe while extrusion ramps back up. Everything else in the
// stream passes through unchanged.
package wipe

import (
	"fmt"

	"github.com/damiendr/cura-nozzlewipe/pkg/errors"
)

// Options holds the configuration for one transform run. The zero value is
// not useful; start from DefaultOptions.
type Options struct {
	// TakeoffDist is the wipe length before the travel hop, in mm.
	TakeoffDist float64

	// LandingDist is the wipe length after the travel hop, in mm.
	LandingDist float64

	// ZHopPerMM is the extra lift per mm of travel distance, in mm.
	ZHopPerMM float64

	// ZRelief is the hover margin above the printed surface while
	// wiping, in mm.
	ZRelief float64

	// SameType forbids wiping across a feature-type comment boundary.
	SameType bool

	// HalfTrace stops each wipe at half the configured distance and
	// relies on the oscillation's return leg for the rest.
	HalfTrace bool
}

// DefaultOptions returns the stock plugin parameters.
func DefaultOptions() Options {
	return Options{
		TakeoffDist: 10.0,
		LandingDist: 10.0,
		ZHopPerMM:   0.015,
		ZRelief:     0.05,
	}
}

// Validate checks that all distances are non-negative.
func (o Options) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"takeoff_dist", o.TakeoffDist},
		{"landing_dist", o.LandingDist},
		{"z_hop_per_mm", o.ZHopPerMM},
		{"z_relief", o.ZRelief},
	}
	for _, c := range checks {
		if c.value < 0 {
			return errors.ConfigValueError("nozzle_wipe", c.name,
				fmt.Sprintf("%g", c.value), "must be >= 0")
		}
	}
	return nil
}

// takeoffTarget returns the distance at which the takeoff wipe stops.
func (o Options) takeoffTarget() float64 {
	if o.HalfTrace {
		return o.TakeoffDist / 2
	}
	return o.TakeoffDist
}

// landingTarget returns the distance at which the landing wipe stops.
func (o Options) landingTarget() float64 {
	if o.HalfTrace {
		return o.LandingDist / 2
	}
	return o.LandingDist
}
