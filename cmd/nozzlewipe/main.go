// This file may be distributed under the terms of the GNU GPLv3 license.

// nozzlewipe rewrites a G-code file to wipe the nozzle before and after
// every retraction. It requires a non-zero Z-hop while retracting in the
// slicer settings to function.
//
// Usage:
//
//	nozzlewipe [flags] [input.gcode|-]
//
// With no input argument or "-", G-code is read from stdin. Output goes to
// stdout unless -o is given.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/damiendr/cura-nozzlewipe/pkg/config"
	"github.com/damiendr/cura-nozzlewipe/pkg/log"
	"github.com/damiendr/cura-nozzlewipe/pkg/metrics"
	"github.com/damiendr/cura-nozzlewipe/pkg/wipe"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.GetLogger("main").Error("%v", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	defaults := wipe.DefaultOptions()

	fs := flag.NewFlagSet("nozzlewipe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("o", "", "output file (default: stdout)")
	profilePath := fs.String("profile", "", "profile file (.cfg ini or .yaml)")
	takeoffDist := fs.Float64("takeoff-dist", defaults.TakeoffDist, "takeoff wipe distance (mm)")
	landingDist := fs.Float64("landing-dist", defaults.LandingDist, "landing wipe distance (mm)")
	zHopPerMM := fs.Float64("z-hop-per-mm", defaults.ZHopPerMM, "min. Z-hop per mm travelled (mm)")
	zRelief := fs.Float64("z-relief", defaults.ZRelief, "hover height during wiping (mm)")
	sameType := fs.Bool("same-type", defaults.SameType, "don't wipe across section boundaries")
	halfTrace := fs.Bool("half-trace", defaults.HalfTrace, "stop each wipe at half the configured distance")
	showMetrics := fs.Bool("metrics", false, "print run metrics to stderr in Prometheus text format")
	logFile := fs.String("log-file", "", "write logs to this file (rotated) instead of stderr")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	base := log.New("nozzlewipe")
	log.ConfigureFromEnv(base)
	if *logFile != "" {
		w := log.NewRotatingWriter(log.RotationConfig{Filename: *logFile})
		defer w.Close()
		base.SetWriter(w)
		base.SetColorize(false)
	}
	if *verbose {
		base.SetLevel(log.DEBUG)
	}
	log.SetDefaultLogger(base)
	logger := log.GetLogger("main")

	opts := defaults
	if *profilePath != "" {
		var err error
		if opts, err = config.LoadProfile(*profilePath); err != nil {
			return err
		}
	}
	// Flags given on the command line win over the profile.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "takeoff-dist":
			opts.TakeoffDist = *takeoffDist
		case "landing-dist":
			opts.LandingDist = *landingDist
		case "z-hop-per-mm":
			opts.ZHopPerMM = *zHopPerMM
		case "z-relief":
			opts.ZRelief = *zRelief
		case "same-type":
			opts.SameType = *sameType
		case "half-trace":
			opts.HalfTrace = *halfTrace
		}
	})
	if err := opts.Validate(); err != nil {
		return err
	}

	inPath := fs.Arg(0)
	lines, err := readLines(inPath, stdin)
	if err != nil {
		return err
	}

	proc := wipe.NewProcessor(opts)
	var coll *metrics.Collector
	if *showMetrics {
		coll = metrics.NewCollector()
		proc.SetMetrics(coll)
	}

	out, err := proc.Transform(lines)
	if err != nil {
		return err
	}

	if err := writeLines(out, *outPath, stdout); err != nil {
		return err
	}

	stats := proc.Stats()
	logger.WithFields(log.Fields{
		"lines":     stats.Lines,
		"matches":   stats.Matches,
		"rewinds":   stats.Rewinds,
		"fallbacks": stats.Fallbacks,
	}).Info("transform complete")

	if coll != nil {
		if err := coll.Dump(stderr); err != nil {
			logger.Warn("metrics dump failed: %v", err)
		}
	}
	return nil
}

// readLines reads the whole input, from a file or stdin when path is empty
// or "-".
func readLines(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

// writeLines writes the output to a file (via a temp file and rename, so a
// failed run never truncates an existing output) or to stdout when path is
// empty.
func writeLines(lines []string, path string, stdout io.Writer) error {
	if path == "" {
		w := bufio.NewWriter(stdout)
		for _, ln := range lines {
			fmt.Fprintln(w, ln)
		}
		return w.Flush()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nozzlewipe-*")
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp opens with 0600; the finished output is a regular file.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}

	w := bufio.NewWriter(tmp)
	for _, ln := range lines {
		fmt.Fprintln(w, ln)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
