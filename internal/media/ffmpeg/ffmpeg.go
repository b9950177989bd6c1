// Package ffmpeg adapts the encode collaborator that turns a pool file into
// the distribution format.
package ffmpeg

import (
	"context"
	"strconv"
	"strings"

	"syphon/internal/toolexec"
)

// Encoder wraps the ffmpeg binary.
type Encoder struct {
	runner  toolexec.Runner
	binary  string
	quality int
}

// New constructs an encoder using the given VBR quality (0 best, 9 worst).
func New(runner toolexec.Runner, binary string, quality int) *Encoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{runner: runner, binary: binary, quality: quality}
}

// Encode writes an MP3 rendition of src to dst. The metadata of the first
// audio stream of src is carried to the output. dst must not exist.
func (e *Encoder) Encode(ctx context.Context, src, dst string) error {
	_, err := e.runner.Run(ctx, toolexec.Command{Name: e.binary, Args: Args(src, dst, e.quality)})
	return err
}

// Args returns the encode argument list.
func Args(src, dst string, quality int) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-map_metadata", "0:s:0",
		"-codec:a", "libmp3lame",
		"-q:a", strconv.Itoa(quality),
		dst,
	}
}
