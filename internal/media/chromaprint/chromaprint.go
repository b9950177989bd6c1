// Package chromaprint adapts the fpcalc acoustic fingerprint collaborator.
package chromaprint

import (
	"context"
	"fmt"
	"strings"

	"syphon/internal/services"
	"syphon/internal/toolexec"
)

const fingerprintPrefix = "FINGERPRINT="

// Fingerprinter wraps the fpcalc binary.
type Fingerprinter struct {
	runner toolexec.Runner
	binary string
}

// New constructs a fingerprint adapter.
func New(runner toolexec.Runner, binary string) *Fingerprinter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "fpcalc"
	}
	return &Fingerprinter{runner: runner, binary: binary}
}

// Fingerprint computes the opaque fingerprint of path.
func (f *Fingerprinter) Fingerprint(ctx context.Context, path string) ([]byte, error) {
	result, err := f.runner.Run(ctx, toolexec.Command{Name: f.binary, Args: []string{path}})
	if err != nil {
		return nil, err
	}
	value, err := ParseFingerprint(result.Stdout)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// ParseFingerprint returns the value of the FINGERPRINT= line.
func ParseFingerprint(stdout string) (string, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, fingerprintPrefix); ok && value != "" {
			return value, nil
		}
	}
	return "", services.Wrap(
		services.ErrExternalTool,
		"",
		"fingerprint",
		"parse",
		fmt.Errorf("%w: no %s line", toolexec.ErrUnexpectedOutput, strings.TrimSuffix(fingerprintPrefix, "=")),
	)
}
