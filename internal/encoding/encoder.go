package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/media/id3"
	"syphon/internal/media/tags"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/staging"
	"syphon/internal/workerpool"
)

// Converter produces an output rendition of a pool file.
type Converter interface {
	Encode(ctx context.Context, src, dst string) error
}

// Encoder converts pool files into the output format.
type Encoder struct {
	cfg       *config.Config
	converter Converter
	tagger    tags.Tagger
	logger    *slog.Logger
}

// NewEncoder constructs the encode stage. tagger reads the pool tags that
// the output frames are checked against.
func NewEncoder(cfg *config.Config, converter Converter, tagger tags.Tagger, logger *slog.Logger) *Encoder {
	return &Encoder{cfg: cfg, converter: converter, tagger: tagger, logger: logging.NewComponentLogger(logger, "encoder")}
}

func (e *Encoder) Name() string { return "encode" }

func (e *Encoder) Inputs() []string { return []string{stage.AreaPool} }

func (e *Encoder) Outputs() []string { return []string{stage.AreaOutput} }

// SetLogger injects the run-scoped logger.
func (e *Encoder) SetLogger(logger *slog.Logger) {
	e.logger = logging.NewComponentLogger(logger, "encoder")
}

// Run converts every pool file that has no output counterpart yet.
func (e *Encoder) Run(ctx context.Context) (stage.Report, error) {
	staging.CleanTemporaries(ctx, e.logger, e.cfg.OutputDir())

	pool, err := fileutil.ListFiles(e.cfg.PoolDir(), e.cfg.Library.AudioExtension)
	if err != nil {
		return stage.Report{}, services.Wrap(services.ErrFilesystem, "encode", "list pool", e.cfg.PoolDir(), err)
	}
	existing, err := fileutil.NameSet(e.cfg.OutputDir(), e.cfg.Library.OutputExtension)
	if err != nil {
		return stage.Report{}, services.Wrap(services.ErrFilesystem, "encode", "list output", e.cfg.OutputDir(), err)
	}

	pending := make([]string, 0, len(pool))
	for _, name := range pool {
		if _, done := existing[e.OutputName(name)]; !done {
			pending = append(pending, name)
		}
	}
	e.logger.Info("encode candidates",
		logging.Int("pool", len(pool)),
		logging.Int("pending", len(pending)),
	)

	report, err := workerpool.RunAll(ctx, workerpool.Options[string]{
		Workers: e.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(e.cfg.StagePolicy(e.Name())),
		Logger:  e.logger,
		Stage:   e.Name(),
	}, pending, e.Convert)
	report.Skipped += len(pool) - len(pending)
	return report, err
}

// OutputName maps a pool file name to its output file name.
func (e *Encoder) OutputName(poolName string) string {
	return fileutil.ReplaceExt(poolName, e.cfg.Library.OutputExtension)
}

// Convert encodes pool/<poolName> into the output area. An existing output
// file is left alone. The output is published only once it is fully encoded
// and carries the pool file's title and artist.
func (e *Encoder) Convert(ctx context.Context, poolName string) error {
	src := filepath.Join(e.cfg.PoolDir(), poolName)
	dst := filepath.Join(e.cfg.OutputDir(), e.OutputName(poolName))

	exists, err := fileutil.Exists(dst)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "encode", "stat", filepath.Base(dst), err)
	}
	if exists {
		return fmt.Errorf("%w: output exists", workerpool.ErrSkipped)
	}

	want, err := e.tagger.Read(src)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "encode", "read pool tags", poolName, err)
	}

	tmp := fileutil.TempPath(dst)
	_ = os.Remove(tmp)
	if err := e.converter.Encode(ctx, src, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	logger := logging.WithContext(ctx, e.logger)
	if want.Complete() {
		changed, err := id3.Ensure(tmp, id3.Frames{Title: want.Title, Artist: want.Artist})
		if err != nil {
			_ = os.Remove(tmp)
			return services.Wrap(services.ErrExternalTool, "encode", "verify frames", filepath.Base(dst), err)
		}
		if changed {
			logging.WarnWithContext(logger, "encoder did not carry tags; frames rewritten", "output_frames_rewritten",
				logging.String("file", filepath.Base(dst)),
				logging.String(logging.FieldErrorHint, "check the encoder metadata mapping"),
				logging.String(logging.FieldImpact, "none, output tags corrected"),
			)
		}
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrFilesystem, "encode", "publish", filepath.Base(dst), err)
	}
	logger.Info("output encoded", logging.String("file", filepath.Base(dst)))
	return nil
}
