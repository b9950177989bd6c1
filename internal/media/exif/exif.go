// Package exif adapts the metadata reader used to find the nominal bit rate
// of an audio file.
package exif

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"syphon/internal/services"
	"syphon/internal/toolexec"
)

const bitrateLabel = "Nominal Bitrate"

// Reader wraps the metadata binary.
type Reader struct {
	runner toolexec.Runner
	binary string
}

// New constructs a metadata reader.
func New(runner toolexec.Runner, binary string) *Reader {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	return &Reader{runner: runner, binary: binary}
}

// NominalBitrate returns the nominal bit rate of path in kbps.
func (r *Reader) NominalBitrate(ctx context.Context, path string) (int, error) {
	result, err := r.runner.Run(ctx, toolexec.Command{Name: r.binary, Args: []string{path}})
	if err != nil {
		return 0, err
	}
	return ParseNominalBitrate(result.Stdout)
}

// ParseNominalBitrate extracts the first "Nominal Bitrate : <n> kbps" line.
// An absent line or a non-positive value is services.ErrMissingData.
func ParseNominalBitrate(stdout string) (int, error) {
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.Contains(line, bitrateLabel) {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		fields := strings.Fields(value)
		if !ok || len(fields) == 0 {
			break
		}
		kbps, err := strconv.Atoi(fields[0])
		if err != nil || kbps <= 0 {
			return 0, services.Wrap(services.ErrMissingData, "", "metadata", fmt.Sprintf("bit rate %q", strings.TrimSpace(value)), nil)
		}
		return kbps, nil
	}
	return 0, services.Wrap(services.ErrMissingData, "", "metadata", "no nominal bit rate reported", nil)
}
