package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damiendr/cura-nozzlewipe/pkg/gcode"
)

// hopFixture surrounds a retract/hop/re-extrude sequence with enough printed
// moves on both sides for full takeoff and landing wipes.
var hopFixture = strings.Join([]string{
	"G1 Z32.700",
	"G1 X100.0 Y100.0 E10.0",
	"G1 X104.0 Y100.0 E11.0",
	"G1 X108.0 Y100.0 E12.0",
	"G1 F3000 E929.45693",
	"G1 Z33.000",
	"G0 F9000 X73.472 Y27.640",
	";TYPE:WALL-OUTER",
	"G1 Z32.700",
	"G1 F3000 E934.45693",
	"G1 X73.0 Y30.0 E935.0",
	"G1 X73.0 Y34.0 E936.0",
	"G1 X73.0 Y38.0 E937.0",
}, "\n") + "\n"

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.gcode")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(nil, strings.NewReader(hopFixture), &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, ";TYPE:Z-WIPE")
	assert.Contains(t, out, ";hop")
	assert.Contains(t, out, "retract 12.00")
	assert.Contains(t, out, "extrude 12.00")
	// Untouched lines pass through verbatim.
	assert.Contains(t, out, "G1 X104.0 Y100.0 E11.0\n")
	assert.Contains(t, out, "G1 X73.0 Y38.0 E937.0\n")
}

func TestRunFileToFile(t *testing.T) {
	inPath := writeInput(t, hopFixture)
	outPath := filepath.Join(t.TempDir(), "output.gcode")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-o", outPath, inPath}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), ";TYPE:Z-WIPE")

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(),
		"output must be readable like a regular file")
}

func TestRunOutputNotTruncatedOnError(t *testing.T) {
	inPath := writeInput(t, "G1 X1 Y1\nG91\n")
	outPath := filepath.Join(t.TempDir(), "output.gcode")
	require.NoError(t, os.WriteFile(outPath, []byte("precious\n"), 0644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"-o", outPath, inPath}, strings.NewReader(""), &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSUPPORTED_MODE")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "precious\n", string(data))
}

func TestRunProfileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "wipe.cfg")
	require.NoError(t, os.WriteFile(profile, []byte("[nozzle_wipe]\ntakeoff_dist: 6\nz_relief: 0.2\n"), 0644))

	inPath := writeInput(t, hopFixture)

	// -z-relief on the command line wins over the profile value; the
	// profile's shorter takeoff distance still applies.
	var stdout, stderr bytes.Buffer
	err := run([]string{"-profile", profile, "-z-relief", "0.3", inPath},
		strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "retract 8.00")
	assert.NotContains(t, out, "retract 12.00")

	var lower string
	for _, ln := range strings.Split(out, "\n") {
		if strings.HasSuffix(ln, ";lower a bit") {
			lower = ln
		}
	}
	require.NotEmpty(t, lower, "no lower step in output")
	z, err := gcode.Parse(lower).Float("Z")
	require.NoError(t, err)
	assert.InDelta(t, 33.0, z, 1e-9)
}

func TestRunRejectsBadOptions(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-takeoff-dist", "-1"}, strings.NewReader(""), &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takeoff_dist")
}

func TestRunMetricsDump(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-metrics"}, strings.NewReader(hopFixture), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "nozzlewipe_matches_total 1")
}
