package workflow

import (
	"context"
	"path/filepath"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/devicesync"
	"syphon/internal/fileutil"
	"syphon/internal/playlist"
	"syphon/internal/stage"
)

// AreaCount is the number of finished files in a library area.
type AreaCount struct {
	Name  string
	Path  string
	Files int
}

// Status is a snapshot of the library.
type Status struct {
	Catalog catalog.Stats
	Areas   []AreaCount
	Devices []AreaCount
}

// Inspect counts the catalog rows and the files of every area.
func Inspect(ctx context.Context, cfg *config.Config, store *catalog.Store) (Status, error) {
	stats, err := store.Stats(ctx)
	if err != nil {
		return Status{}, err
	}
	status := Status{Catalog: stats}

	var downloads int
	for _, source := range cfg.ActiveSources() {
		names, err := fileutil.ListFiles(cfg.DownloadsDir(source.Name), cfg.Library.AudioExtension)
		if err != nil {
			return Status{}, err
		}
		downloads += len(names)
	}
	status.Areas = append(status.Areas, AreaCount{Name: stage.AreaDownloads, Path: filepath.Join(cfg.Paths.BaseDir, "downloads"), Files: downloads})

	areas := []struct {
		name, dir, ext string
	}{
		{stage.AreaNormalized, cfg.NormalizedDir(), cfg.Library.AudioExtension},
		{stage.AreaPool, cfg.PoolDir(), cfg.Library.AudioExtension},
		{stage.AreaOutput, cfg.OutputDir(), cfg.Library.OutputExtension},
		{stage.AreaPlaylists, cfg.PlaylistsDir(), playlist.Extension},
		{stage.AreaCustom, cfg.CustomDir(), ""},
	}
	for _, area := range areas {
		names, err := fileutil.ListFiles(area.dir, area.ext)
		if err != nil {
			return Status{}, err
		}
		status.Areas = append(status.Areas, AreaCount{Name: area.name, Path: area.dir, Files: len(names)})
	}

	for _, device := range cfg.Devices {
		dir := filepath.Join(cfg.DeviceDir(device.Name), devicesync.OutputDirName)
		names, err := fileutil.ListFiles(dir, "")
		if err != nil {
			return Status{}, err
		}
		status.Devices = append(status.Devices, AreaCount{Name: device.Name, Path: dir, Files: len(names)})
	}
	return status, nil
}
