package tagging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/media/tags"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/textutil"
	"syphon/internal/workerpool"
)

// PoolName returns the pool file name of a resolved song.
func PoolName(title, artist, ext string) string {
	return textutil.SanitizeSegment(title) + " _ " + textutil.SanitizeSegment(artist) + ext
}

// SelectCanonical returns one song per pool name from songs: the resolved
// songs are ordered by (title, artist, input) and the first of each run
// sharing a pool name is kept.
func SelectCanonical(songs []catalog.Song, ext string) []catalog.Song {
	sorted := make([]catalog.Song, 0, len(songs))
	for _, song := range songs {
		if song.Resolved() {
			sorted = append(sorted, song)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		return a.Input < b.Input
	})

	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, song := range sorted {
		name := PoolName(song.Title, song.Artist, ext)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, song)
	}
	return out
}

// Assigner maintains the pool: one tagged copy per distinct (title, artist).
type Assigner struct {
	cfg    *config.Config
	store  *catalog.Store
	tagger tags.Tagger
	logger *slog.Logger
}

// NewAssigner constructs the pool stage.
func NewAssigner(cfg *config.Config, store *catalog.Store, tagger tags.Tagger, logger *slog.Logger) *Assigner {
	return &Assigner{cfg: cfg, store: store, tagger: tagger, logger: logging.NewComponentLogger(logger, "pool")}
}

func (a *Assigner) Name() string { return "pool" }

func (a *Assigner) Inputs() []string { return []string{stage.AreaTags, stage.AreaNormalized} }

func (a *Assigner) Outputs() []string { return []string{stage.AreaPool} }

// SetLogger injects the run-scoped logger.
func (a *Assigner) SetLogger(logger *slog.Logger) {
	a.logger = logging.NewComponentLogger(logger, "pool")
}

// Run copies and tags the canonical song of every (title, artist).
func (a *Assigner) Run(ctx context.Context) (stage.Report, error) {
	resolved, err := a.store.ResolvedSongs(ctx)
	if err != nil {
		return stage.Report{}, err
	}
	canonical := SelectCanonical(resolved, a.cfg.Library.AudioExtension)
	a.logger.Info("pool candidates",
		logging.Int("resolved", len(resolved)),
		logging.Int("canonical", len(canonical)),
	)

	return workerpool.RunAll(ctx, workerpool.Options[catalog.Song]{
		Workers: a.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(a.cfg.StagePolicy(a.Name())),
		Logger:  a.logger,
		Stage:   a.Name(),
		Label:   func(s catalog.Song) string { return s.Input },
	}, canonical, a.CopyAndTag)
}

// CopyAndTag makes pool/<PoolName> a copy of the song's normalized file
// carrying its title and artist. An existing pool file is only rewritten when
// its tags differ. A missing normalized file is skipped.
func (a *Assigner) CopyAndTag(ctx context.Context, song catalog.Song) error {
	src := filepath.Join(a.cfg.NormalizedDir(), song.Input)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: normalized file missing", workerpool.ErrSkipped)
		}
		return services.Wrap(services.ErrFilesystem, "pool", "stat", song.Input, err)
	}

	want := tags.Tags{Title: song.Title, Artist: song.Artist}
	dst := filepath.Join(a.cfg.PoolDir(), PoolName(song.Title, song.Artist, a.cfg.Library.AudioExtension))
	logger := logging.WithContext(ctx, a.logger)

	exists, err := fileutil.Exists(dst)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "pool", "stat", filepath.Base(dst), err)
	}
	if !exists {
		tmp := fileutil.TempPath(dst)
		if err := fileutil.CopyFile(src, tmp); err != nil {
			_ = os.Remove(tmp)
			return services.Wrap(services.ErrFilesystem, "pool", "copy", song.Input, err)
		}
		if err := a.tagger.Write(tmp, want); err != nil {
			_ = os.Remove(tmp)
			return services.Wrap(services.ErrExternalTool, "pool", "write tags", filepath.Base(dst), err)
		}
		if err := os.Rename(tmp, dst); err != nil {
			_ = os.Remove(tmp)
			return services.Wrap(services.ErrFilesystem, "pool", "publish", filepath.Base(dst), err)
		}
		logger.Info("pool file created", logging.String("file", filepath.Base(dst)))
		return nil
	}

	current, err := a.tagger.Read(dst)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "pool", "read tags", filepath.Base(dst), err)
	}
	if current == want {
		return fmt.Errorf("%w: tags current", workerpool.ErrSkipped)
	}
	if err := a.tagger.Write(dst, want); err != nil {
		return services.Wrap(services.ErrExternalTool, "pool", "write tags", filepath.Base(dst), err)
	}
	logger.Info("pool tags corrected",
		logging.String("file", filepath.Base(dst)),
		logging.String("previous_title", current.Title),
		logging.String("previous_artist", current.Artist),
	)
	return nil
}
