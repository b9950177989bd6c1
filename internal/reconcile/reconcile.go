// Package reconcile registers conditioned files in the catalog. A file is
// fingerprinted and inserted once; files whose fingerprint fails stay
// unregistered and are retried by the next run.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/stage"
	"syphon/internal/workerpool"
)

// Fingerprinter computes an opaque acoustic fingerprint.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) ([]byte, error)
}

// Reconciler brings the catalog's song rows in line with the normalized area.
type Reconciler struct {
	cfg    *config.Config
	store  *catalog.Store
	fp     Fingerprinter
	logger *slog.Logger
}

// New constructs a reconciler.
func New(cfg *config.Config, store *catalog.Store, fp Fingerprinter, logger *slog.Logger) *Reconciler {
	return &Reconciler{cfg: cfg, store: store, fp: fp, logger: logging.NewComponentLogger(logger, "reconcile")}
}

func (r *Reconciler) Name() string { return "reconcile" }

func (r *Reconciler) Inputs() []string { return []string{stage.AreaNormalized, stage.AreaSongs} }

func (r *Reconciler) Outputs() []string { return []string{stage.AreaSongs} }

// SetLogger injects the run-scoped logger.
func (r *Reconciler) SetLogger(logger *slog.Logger) {
	r.logger = logging.NewComponentLogger(logger, "reconcile")
}

// Run is the stage entry point.
func (r *Reconciler) Run(ctx context.Context) (stage.Report, error) {
	return r.Reconcile(ctx)
}

// Unknown returns normalized filenames that have no song row, sorted.
func (r *Reconciler) Unknown(ctx context.Context) ([]string, error) {
	names, err := fileutil.ListFiles(r.cfg.NormalizedDir(), "")
	if err != nil {
		return nil, err
	}
	known, err := r.store.SongInputs(ctx)
	if err != nil {
		return nil, err
	}
	unknown := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown, nil
}

// Reconcile fingerprints and registers every unknown normalized file
// concurrently. A lost insert race is logged and counted as skipped.
func (r *Reconciler) Reconcile(ctx context.Context) (stage.Report, error) {
	unknown, err := r.Unknown(ctx)
	if err != nil {
		return stage.Report{}, err
	}
	r.logger.Info("unregistered files", logging.Int("count", len(unknown)))

	return workerpool.RunAll(ctx, workerpool.Options[string]{
		Workers: r.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(r.cfg.StagePolicy(r.Name())),
		Logger:  r.logger,
		Stage:   r.Name(),
	}, unknown, r.register)
}

func (r *Reconciler) register(ctx context.Context, name string) error {
	fp, err := r.fp.Fingerprint(ctx, filepath.Join(r.cfg.NormalizedDir(), name))
	if err != nil {
		return err
	}
	err = r.store.InsertSong(ctx, catalog.Song{Input: name, Fingerprint: fp})
	if errors.Is(err, catalog.ErrDuplicate) {
		logging.WithContext(ctx, r.logger).Info("song already registered", logging.String("file", name))
		return workerpool.ErrSkipped
	}
	return err
}
