// Package sox adapts the sox collaborator for silence trimming and time
// reversal. Both operations read src and write a new file at dst.
package sox

import (
	"context"
	"strconv"
	"strings"

	"syphon/internal/toolexec"
)

// Silence holds the leading-silence detection parameters.
type Silence struct {
	Regions     int
	MaxDuration string
	Threshold   string
}

// Tool wraps the sox binary.
type Tool struct {
	runner  toolexec.Runner
	binary  string
	silence Silence
}

// New constructs a sox adapter.
func New(runner toolexec.Runner, binary string, silence Silence) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "sox"
	}
	if silence.Regions <= 0 {
		silence.Regions = 1
	}
	return &Tool{runner: runner, binary: binary, silence: silence}
}

// TrimLeadingSilence writes src without its leading silence to dst.
func (t *Tool) TrimLeadingSilence(ctx context.Context, src, dst string) error {
	args := []string{
		src, dst,
		"silence", strconv.Itoa(t.silence.Regions), t.silence.MaxDuration, t.silence.Threshold,
	}
	_, err := t.runner.Run(ctx, toolexec.Command{Name: t.binary, Args: args})
	return err
}

// Reverse writes src played backwards to dst.
func (t *Tool) Reverse(ctx context.Context, src, dst string) error {
	_, err := t.runner.Run(ctx, toolexec.Command{Name: t.binary, Args: []string{src, dst, "reverse"}})
	return err
}
