package tagging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/logging"
	"syphon/internal/media/tags"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/textutil"
	"syphon/internal/workerpool"
)

// Resolver fills in the title and artist of songs registered without them.
type Resolver struct {
	cfg    *config.Config
	store  *catalog.Store
	tagger tags.Tagger
	logger *slog.Logger
}

// NewResolver constructs the tag resolution stage.
func NewResolver(cfg *config.Config, store *catalog.Store, tagger tags.Tagger, logger *slog.Logger) *Resolver {
	return &Resolver{cfg: cfg, store: store, tagger: tagger, logger: logging.NewComponentLogger(logger, "resolver")}
}

func (r *Resolver) Name() string { return "resolve" }

func (r *Resolver) Inputs() []string { return []string{stage.AreaSongs, stage.AreaNormalized} }

func (r *Resolver) Outputs() []string { return []string{stage.AreaTags} }

// SetLogger injects the run-scoped logger.
func (r *Resolver) SetLogger(logger *slog.Logger) {
	r.logger = logging.NewComponentLogger(logger, "resolver")
}

// Run resolves every song lacking a title or artist.
func (r *Resolver) Run(ctx context.Context) (stage.Report, error) {
	pending, err := r.store.UnresolvedSongs(ctx)
	if err != nil {
		return stage.Report{}, err
	}
	r.logger.Info("unresolved songs", logging.Int("count", len(pending)))

	return workerpool.RunAll(ctx, workerpool.Options[catalog.Song]{
		Workers: r.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(r.cfg.StagePolicy(r.Name())),
		Logger:  r.logger,
		Stage:   r.Name(),
		Label:   func(s catalog.Song) string { return s.Input },
	}, pending, r.resolve)
}

// Lookup determines the tags of a normalized file: embedded tags when both
// are present, else the file name when fallback is enabled.
// A missing normalized file yields an error matching fs.ErrNotExist.
func (r *Resolver) Lookup(input string) (tags.Tags, string, error) {
	path := filepath.Join(r.cfg.NormalizedDir(), input)
	if _, err := os.Stat(path); err != nil {
		return tags.Tags{}, "", err
	}
	embedded, err := r.tagger.Read(path)
	if err != nil {
		return tags.Tags{}, "", services.Wrap(services.ErrExternalTool, "resolve", "read tags", input, err)
	}
	resolved := tags.Tags{Title: textutil.NormalizeTag(embedded.Title), Artist: textutil.NormalizeTag(embedded.Artist)}
	if resolved.Complete() {
		return resolved, "embedded", nil
	}
	if r.cfg.Library.FilenameFallback {
		if artist, title, ok := textutil.ParseFilenameTags(input); ok {
			return tags.Tags{Title: title, Artist: artist}, "filename", nil
		}
	}
	return tags.Tags{}, "", nil
}

func (r *Resolver) resolve(ctx context.Context, song catalog.Song) error {
	resolved, origin, err := r.Lookup(song.Input)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: normalized file missing", workerpool.ErrSkipped)
	}
	if err != nil {
		return err
	}
	if !resolved.Complete() {
		return fmt.Errorf("%w: no title and artist available", workerpool.ErrSkipped)
	}
	if err := r.store.UpdateTags(ctx, song.Input, resolved.Title, resolved.Artist); err != nil {
		return err
	}
	logging.WithContext(ctx, r.logger).Debug("song resolved",
		logging.String("title", resolved.Title),
		logging.String("artist", resolved.Artist),
		logging.String("origin", origin),
	)
	return nil
}
