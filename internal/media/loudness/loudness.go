// Package loudness adapts the normalize-ogg collaborator: measuring the
// current level of a file and applying a signed gain change in place.
package loudness

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"syphon/internal/services"
	"syphon/internal/toolexec"
)

const noAdjustmentMarker = "ADJUST_NEEDED 0"

// Measurement is the parsed result of a level probe.
type Measurement struct {
	// Level is the measured level in dBFS, rounded to the nearest integer.
	Level int
	// NoAdjustment is set when the tool reports that no change is needed.
	NoAdjustment bool
}

// Delta returns the signed gain change required to reach target.
func (m Measurement) Delta(target int) int {
	if m.NoAdjustment {
		return 0
	}
	return target - m.Level
}

// Tool wraps the loudness binary.
type Tool struct {
	runner toolexec.Runner
	binary string
}

// New constructs a loudness adapter.
func New(runner toolexec.Runner, binary string) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "normalize-ogg"
	}
	return &Tool{runner: runner, binary: binary}
}

// Measure probes the level of path without modifying it.
func (t *Tool) Measure(ctx context.Context, path string) (Measurement, error) {
	result, err := t.runner.Run(ctx, toolexec.Command{Name: t.binary, Args: []string{"-n", path}})
	if err != nil {
		return Measurement{}, err
	}
	return ParseMeasurement(result.Stdout)
}

// Adjust applies deltaDB to path in place, re-encoding at bitrateKbps.
func (t *Tool) Adjust(ctx context.Context, path string, deltaDB, bitrateKbps int) error {
	args := []string{
		"--ogg",
		"--bitrate", strconv.Itoa(bitrateKbps),
		"-g", strconv.Itoa(deltaDB) + "db",
		path,
	}
	_, err := t.runner.Run(ctx, toolexec.Command{Name: t.binary, Args: args})
	return err
}

// ParseMeasurement parses the probe output. The first whitespace-separated
// token carries the level as "<float>dBFS" (a comma decimal separator is
// accepted); alternatively the output reports "ADJUST_NEEDED 0".
func ParseMeasurement(stdout string) (Measurement, error) {
	if strings.Contains(stdout, "dBFS") {
		fields := strings.Fields(stdout)
		token := strings.SplitN(fields[0], "dBFS", 2)[0]
		token = strings.ReplaceAll(token, ",", ".")
		value, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return Measurement{}, services.Wrap(
				services.ErrExternalTool,
				"",
				"loudness",
				"measure",
				fmt.Errorf("%w: level %q", toolexec.ErrUnexpectedOutput, fields[0]),
			)
		}
		return Measurement{Level: int(math.Round(value))}, nil
	}
	if strings.Contains(stdout, noAdjustmentMarker) {
		return Measurement{NoAdjustment: true}, nil
	}
	return Measurement{}, services.Wrap(
		services.ErrExternalTool,
		"",
		"loudness",
		"measure",
		fmt.Errorf("%w: %q", toolexec.ErrUnexpectedOutput, strings.TrimSpace(stdout)),
	)
}
