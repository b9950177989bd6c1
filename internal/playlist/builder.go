package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/tagging"
	"syphon/internal/workerpool"
)

// Builder derives playlists from sources and custom definitions and keeps
// the playlist files and catalog rows in step with them.
type Builder struct {
	cfg    *config.Config
	store  *catalog.Store
	logger *slog.Logger
}

// NewBuilder constructs the playlist stage.
func NewBuilder(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Builder {
	return &Builder{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "playlists")}
}

func (b *Builder) Name() string { return "playlists" }

func (b *Builder) Inputs() []string {
	return []string{stage.AreaDownloads, stage.AreaTags, stage.AreaOutput, stage.AreaCustom}
}

func (b *Builder) Outputs() []string { return []string{stage.AreaPlaylists} }

// SetLogger injects the run-scoped logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logging.NewComponentLogger(logger, "playlists")
}

// Run builds every playlist, stores the ones that changed and prunes those no
// longer produced.
func (b *Builder) Run(ctx context.Context) (stage.Report, error) {
	playlists, err := b.Build(ctx)
	if err != nil {
		return stage.Report{}, err
	}

	report, err := workerpool.RunAll(ctx, workerpool.Options[catalog.Playlist]{
		Workers: b.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(b.cfg.StagePolicy(b.Name())),
		Logger:  b.logger,
		Stage:   b.Name(),
		Label:   func(p catalog.Playlist) string { return p.Name },
	}, playlists, func(ctx context.Context, p catalog.Playlist) error {
		changed, err := b.Store(ctx, p)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: playlist unchanged", workerpool.ErrSkipped)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	keep := make(map[string]struct{}, len(playlists))
	for _, p := range playlists {
		keep[p.Name] = struct{}{}
	}
	if err := b.Prune(ctx, keep); err != nil {
		return report, err
	}
	return report, nil
}

// Build returns the auto playlist of every active source followed by the
// custom playlists, sorted by name within each kind.
func (b *Builder) Build(ctx context.Context) ([]catalog.Playlist, error) {
	output, err := fileutil.NameSet(b.cfg.OutputDir(), b.cfg.Library.OutputExtension)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "playlists", "list output", b.cfg.OutputDir(), err)
	}
	songs, err := b.store.ResolvedSongs(ctx)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]catalog.Song, len(songs))
	for _, song := range songs {
		resolved[song.Input] = song
	}

	var playlists []catalog.Playlist
	autoNames := make(map[string]struct{})
	for _, source := range b.cfg.ActiveSources() {
		p, err := b.Auto(source, resolved, output)
		if err != nil {
			return nil, err
		}
		autoNames[p.Name] = struct{}{}
		playlists = append(playlists, p)
	}

	custom, err := b.Custom()
	if err != nil {
		return nil, err
	}
	for _, p := range custom {
		if _, clash := autoNames[p.Name]; clash {
			logging.WarnWithContext(b.logger, "custom playlist shadows a source playlist; skipped", "custom_playlist_conflict",
				logging.String("playlist", p.Name),
				logging.String(logging.FieldErrorHint, "rename the file under custom/"),
				logging.String(logging.FieldImpact, "custom playlist not published"),
			)
			continue
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// Auto derives a source's playlist: its downloads in index order, limited to
// resolved songs that have an encoded output, each listed once.
func (b *Builder) Auto(source config.Source, resolved map[string]catalog.Song, output map[string]struct{}) (catalog.Playlist, error) {
	dir := b.cfg.DownloadsDir(source.Name)
	raw, err := fileutil.ListFiles(dir, b.cfg.Library.AudioExtension)
	if err != nil {
		return catalog.Playlist{}, services.Wrap(services.ErrFilesystem, "playlists", "list downloads", dir, err)
	}

	p := catalog.Playlist{Name: source.Name, Kind: catalog.PlaylistAuto, Songs: []string{}}
	seen := make(map[string]struct{})
	for _, name := range SortByIndex(raw, b.logger) {
		song, ok := resolved[name]
		if !ok {
			continue
		}
		out := tagging.PoolName(song.Title, song.Artist, b.cfg.Library.OutputExtension)
		if _, dup := seen[out]; dup {
			continue
		}
		if _, encoded := output[out]; !encoded {
			continue
		}
		seen[out] = struct{}{}
		p.Songs = append(p.Songs, out)
	}
	return p, nil
}

// Custom reads the user-defined playlists under custom/. The playlist name is
// the file stem; every entry's base name is mapped to the output extension.
// A stem that occurs twice keeps the first file in name order.
func (b *Builder) Custom() ([]catalog.Playlist, error) {
	files, err := fileutil.ListFiles(b.cfg.CustomDir(), "")
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "playlists", "list custom", b.cfg.CustomDir(), err)
	}

	var playlists []catalog.Playlist
	seen := make(map[string]struct{})
	for _, file := range files {
		name := strings.TrimSuffix(file, filepath.Ext(file))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			b.logger.Warn("duplicate custom playlist name; keeping first",
				logging.String("playlist", name),
				logging.String("file", file),
				logging.String(logging.FieldEventType, "custom_playlist_duplicate"),
			)
			continue
		}
		seen[name] = struct{}{}

		entries, err := ReadEntries(filepath.Join(b.cfg.CustomDir(), file))
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "playlists", "read custom", file, err)
		}
		p := catalog.Playlist{Name: name, Kind: catalog.PlaylistCustom, Songs: make([]string, 0, len(entries))}
		for _, entry := range entries {
			p.Songs = append(p.Songs, fileutil.ReplaceExt(entry, b.cfg.Library.OutputExtension))
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// Store writes the playlist file and persists the catalog row when its
// entries changed. It reports whether the row was written.
func (b *Builder) Store(ctx context.Context, p catalog.Playlist) (bool, error) {
	target := filepath.Join(b.cfg.PlaylistsDir(), FileName(p.Name))
	if err := fileutil.WriteFileAtomic(target, Render(p.Songs), 0o644); err != nil {
		return false, services.Wrap(services.ErrFilesystem, "playlists", "write", FileName(p.Name), err)
	}
	changed, err := b.store.SavePlaylist(ctx, p)
	if err != nil {
		return false, err
	}
	if changed {
		logging.WithContext(ctx, b.logger).Info("playlist updated",
			logging.String("playlist", p.Name),
			logging.String("kind", string(p.Kind)),
			logging.Int("entries", len(p.Songs)),
		)
	}
	return changed, nil
}

// Prune removes the files and rows of playlists not named in keep.
func (b *Builder) Prune(ctx context.Context, keep map[string]struct{}) error {
	rows, err := b.store.ListPlaylists(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, ok := keep[row.Name]; ok {
			continue
		}
		if err := b.store.DeletePlaylist(ctx, row.Name); err != nil {
			return err
		}
		b.logger.Info("stale playlist removed",
			logging.String("playlist", row.Name),
			logging.String(logging.FieldEventType, "playlist_pruned"),
		)
	}

	files, err := fileutil.ListFiles(b.cfg.PlaylistsDir(), Extension)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "playlists", "list", b.cfg.PlaylistsDir(), err)
	}
	for _, file := range files {
		if _, ok := keep[strings.TrimSuffix(file, Extension)]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(b.cfg.PlaylistsDir(), file)); err != nil && !os.IsNotExist(err) {
			return services.Wrap(services.ErrFilesystem, "playlists", "remove stale", file, err)
		}
	}
	return nil
}
