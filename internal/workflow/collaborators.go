package workflow

import (
	"log/slog"

	"syphon/internal/conditioning"
	"syphon/internal/config"
	"syphon/internal/encoding"
	"syphon/internal/media/chromaprint"
	"syphon/internal/media/exif"
	"syphon/internal/media/ffmpeg"
	"syphon/internal/media/loudness"
	"syphon/internal/media/sox"
	"syphon/internal/media/tags"
	"syphon/internal/reconcile"
	"syphon/internal/toolexec"
)

// Collaborators bundles the external tool adapters the stages call.
type Collaborators struct {
	Runner        toolexec.Runner
	Meter         conditioning.Meter
	Bitrate       conditioning.BitrateReader
	Editor        conditioning.Editor
	Fingerprinter reconcile.Fingerprinter
	Tagger        tags.Tagger
	Converter     encoding.Converter
}

// NewCollaborators wires the real adapters for the tools named in cfg.
func NewCollaborators(cfg *config.Config, logger *slog.Logger) Collaborators {
	runner := toolexec.NewExecRunner(logger)
	return Collaborators{
		Runner:  runner,
		Meter:   loudness.New(runner, cfg.Tools.Loudness),
		Bitrate: exif.New(runner, cfg.Tools.Metadata),
		Editor: sox.New(runner, cfg.Tools.Sox, sox.Silence{
			Regions:     cfg.Silence.Regions,
			MaxDuration: cfg.Silence.MaxDuration,
			Threshold:   cfg.Silence.Threshold,
		}),
		Fingerprinter: chromaprint.New(runner, cfg.Tools.Fingerprint),
		Tagger:        tags.NewTaglib(),
		Converter:     ffmpeg.New(runner, cfg.Tools.Encoder, cfg.Library.MP3Quality),
	}
}
