package conditioning

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/media/loudness"
	"syphon/internal/services"
)

// Meter measures and adjusts loudness in place.
type Meter interface {
	Measure(ctx context.Context, path string) (loudness.Measurement, error)
	Adjust(ctx context.Context, path string, deltaDB, bitrateKbps int) error
}

// BitrateReader reports the nominal bit rate of a file in kbps.
type BitrateReader interface {
	NominalBitrate(ctx context.Context, path string) (int, error)
}

// Editor produces a transformed copy of src at dst.
type Editor interface {
	TrimLeadingSilence(ctx context.Context, src, dst string) error
	Reverse(ctx context.Context, src, dst string) error
}

// Pipeline turns one raw file into one gain-normalized, silence-trimmed file
// in the normalized area.
type Pipeline struct {
	dir        string
	targetGain int
	meter      Meter
	bitrate    BitrateReader
	editor     Editor
	logger     *slog.Logger
}

// NewPipeline constructs a pipeline writing into normalizedDir.
func NewPipeline(normalizedDir string, targetGain int, meter Meter, bitrate BitrateReader, editor Editor, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		dir:        normalizedDir,
		targetGain: targetGain,
		meter:      meter,
		bitrate:    bitrate,
		editor:     editor,
		logger:     logging.NewComponentLogger(logger, "conditioning"),
	}
}

// SetLogger replaces the pipeline logger.
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	p.logger = logging.NewComponentLogger(logger, "conditioning")
}

// Condition copies raw into the normalized area under a temporary name,
// adjusts its gain when needed, trims leading and trailing silence, and only
// then renames it to the raw file's base name. It returns that name.
func (p *Pipeline) Condition(ctx context.Context, raw string) (string, error) {
	name := filepath.Base(raw)
	final := filepath.Join(p.dir, name)
	tmp := filepath.Join(p.dir, fileutil.TempPrefix+name)
	scratch := filepath.Join(p.dir, fileutil.StepPrefix+name)
	logger := logging.WithContext(ctx, p.logger)

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmp)
			_ = os.Remove(scratch)
		}
	}()

	if err := fileutil.CopyFile(raw, tmp); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "condition", "copy", name, err)
	}

	if err := p.normalizeGain(ctx, logger, tmp); err != nil {
		return "", err
	}

	steps := []struct {
		op  string
		run func(context.Context, string, string) error
	}{
		{"trim leading silence", p.editor.TrimLeadingSilence},
		{"reverse", p.editor.Reverse},
		{"trim trailing silence", p.editor.TrimLeadingSilence},
		{"reverse back", p.editor.Reverse},
	}
	for _, step := range steps {
		if err := step.run(ctx, tmp, scratch); err != nil {
			return "", services.Wrap(services.ErrExternalTool, "condition", step.op, name, err)
		}
		if err := os.Rename(scratch, tmp); err != nil {
			return "", services.Wrap(services.ErrFilesystem, "condition", step.op, "replace temporary", err)
		}
	}

	if err := os.Rename(tmp, final); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "condition", "publish", name, err)
	}
	success = true
	logger.Info("file conditioned", logging.String("file", name))
	return name, nil
}

func (p *Pipeline) normalizeGain(ctx context.Context, logger *slog.Logger, path string) error {
	measurement, err := p.meter.Measure(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "condition", "measure loudness", filepath.Base(path), err)
	}
	delta := measurement.Delta(p.targetGain)
	if delta == 0 {
		logger.Debug("level already at target", logging.Int("target_gain", p.targetGain))
		return nil
	}

	kbps, err := p.bitrate.NominalBitrate(ctx, path)
	if err != nil {
		return fmt.Errorf("read bit rate: %w", err)
	}
	logger.Debug("adjusting gain",
		logging.Int("level", measurement.Level),
		logging.Int("delta_db", delta),
		logging.Int("bitrate_kbps", kbps),
	)
	if err := p.meter.Adjust(ctx, path, delta, kbps); err != nil {
		return services.Wrap(services.ErrExternalTool, "condition", "adjust gain", filepath.Base(path), err)
	}
	return nil
}
