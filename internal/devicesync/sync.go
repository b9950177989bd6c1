package devicesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/playlist"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/workerpool"
)

// OutputDirName is the directory inside a device root holding its audio.
const OutputDirName = "output"

// Synchronizer mirrors playlists and their output files onto devices.
type Synchronizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSynchronizer constructs the device stage.
func NewSynchronizer(cfg *config.Config, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{cfg: cfg, logger: logging.NewComponentLogger(logger, "devices")}
}

func (s *Synchronizer) Name() string { return "devices" }

func (s *Synchronizer) Inputs() []string { return []string{stage.AreaPlaylists, stage.AreaOutput} }

func (s *Synchronizer) Outputs() []string { return []string{stage.AreaDevices} }

// SetLogger injects the run-scoped logger.
func (s *Synchronizer) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "devices")
}

// Run removes unconfigured device trees and syncs every configured device in
// configuration order.
func (s *Synchronizer) Run(ctx context.Context) (stage.Report, error) {
	if err := s.RemoveUnconfigured(); err != nil {
		return stage.Report{}, err
	}
	var total stage.Report
	for _, device := range s.cfg.Devices {
		report, err := s.SyncDevice(ctx, device)
		total.Add(report)
		if err != nil {
			return total, fmt.Errorf("device %s: %w", device.Name, err)
		}
	}
	return total, nil
}

// RemoveUnconfigured deletes every entry under devices/ that does not name a
// configured device.
func (s *Synchronizer) RemoveUnconfigured() error {
	entries, err := os.ReadDir(s.cfg.DevicesDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return services.Wrap(services.ErrFilesystem, "devices", "list", s.cfg.DevicesDir(), err)
	}
	configured := make(map[string]struct{}, len(s.cfg.Devices))
	for _, device := range s.cfg.Devices {
		configured[device.Name] = struct{}{}
	}
	for _, entry := range entries {
		if _, ok := configured[entry.Name()]; ok {
			continue
		}
		path := filepath.Join(s.cfg.DevicesDir(), entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return services.Wrap(services.ErrFilesystem, "devices", "remove unconfigured", entry.Name(), err)
		}
		s.logger.Info("unconfigured device removed",
			logging.String("device", entry.Name()),
			logging.String(logging.FieldEventType, "device_removed"),
		)
	}
	return nil
}

// Targets returns the union of output file names listed by the device's
// playlists, in first-seen order, and the playlist files that exist.
// Playlists without a file are skipped.
func (s *Synchronizer) Targets(device config.Device) ([]string, []string, error) {
	var targets, files []string
	seen := make(map[string]struct{})
	for _, name := range device.Playlists {
		path := filepath.Join(s.cfg.PlaylistsDir(), playlist.FileName(name))
		if !directChild(s.cfg.PlaylistsDir(), path) {
			return nil, nil, services.Wrap(services.ErrConfiguration, "devices", "resolve playlist", name,
				fmt.Errorf("playlist %q is not directly under %q", path, s.cfg.PlaylistsDir()))
		}
		entries, err := playlist.ReadEntries(path)
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "device playlist not found; skipped", "device_playlist_missing",
				logging.String("device", device.Name),
				logging.String("playlist", name),
				logging.String(logging.FieldErrorHint, "check the device playlists in the config"),
				logging.String(logging.FieldImpact, "playlist not mirrored"),
			)
			continue
		}
		if err != nil {
			return nil, nil, services.Wrap(services.ErrFilesystem, "devices", "read playlist", name, err)
		}
		files = append(files, path)
		for _, entry := range entries {
			if _, dup := seen[entry]; dup {
				continue
			}
			seen[entry] = struct{}{}
			targets = append(targets, entry)
		}
	}
	return targets, files, nil
}

// SyncDevice converges devices/<name> to the device's playlists: the root
// holds only the playlist files and output/ holds exactly the files they
// reference. Output files already present are not copied again.
func (s *Synchronizer) SyncDevice(ctx context.Context, device config.Device) (stage.Report, error) {
	root := s.cfg.DeviceDir(device.Name)
	if !directChild(s.cfg.DevicesDir(), root) {
		return stage.Report{}, services.Wrap(services.ErrConfiguration, "devices", "resolve root", device.Name,
			fmt.Errorf("device root %q is not directly under %q", root, s.cfg.DevicesDir()))
	}
	outDir := filepath.Join(root, OutputDirName)
	logger := s.logger.With(logging.String("device", device.Name))

	for _, dir := range []string{root, outDir} {
		replaced, err := fileutil.EnsureDir(dir)
		if err != nil {
			return stage.Report{}, services.Wrap(services.ErrFilesystem, "devices", "ensure dir", dir, err)
		}
		if replaced {
			logger.Warn("non-directory replaced with directory",
				logging.String("path", dir),
				logging.String(logging.FieldEventType, "device_dir_replaced"),
			)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return stage.Report{}, services.Wrap(services.ErrFilesystem, "devices", "list", root, err)
	}
	for _, entry := range entries {
		if entry.Name() == OutputDirName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return stage.Report{}, services.Wrap(services.ErrFilesystem, "devices", "clear root", entry.Name(), err)
		}
	}

	targets, playlistFiles, err := s.Targets(device)
	if err != nil {
		return stage.Report{}, err
	}
	for _, src := range playlistFiles {
		if err := fileutil.CopyAtomic(src, filepath.Join(root, filepath.Base(src))); err != nil {
			return stage.Report{}, services.Wrap(services.ErrFilesystem, "devices", "copy playlist", filepath.Base(src), err)
		}
	}

	wanted := make(map[string]struct{}, len(targets))
	for _, name := range targets {
		wanted[name] = struct{}{}
	}
	present, err := os.ReadDir(outDir)
	if err != nil {
		return stage.Report{}, services.Wrap(services.ErrFilesystem, "devices", "list output", outDir, err)
	}
	var extras []string
	have := make(map[string]struct{}, len(present))
	for _, entry := range present {
		if _, ok := wanted[entry.Name()]; ok && entry.Type().IsRegular() {
			have[entry.Name()] = struct{}{}
			continue
		}
		extras = append(extras, entry.Name())
	}
	var missing []string
	for _, name := range targets {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	logger.Info("device plan",
		logging.Int("targets", len(targets)),
		logging.Int("remove", len(extras)),
		logging.Int("copy", len(missing)),
	)

	opts := workerpool.Options[string]{
		Workers: s.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(s.cfg.StagePolicy(s.Name())),
		Logger:  logger,
		Stage:   s.Name(),
	}
	report, err := workerpool.RunAll(ctx, opts, extras, func(_ context.Context, name string) error {
		if err := os.RemoveAll(filepath.Join(outDir, name)); err != nil {
			return services.Wrap(services.ErrFilesystem, "devices", "remove", name, err)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	copied, err := workerpool.RunAll(ctx, opts, missing, func(ctx context.Context, name string) error {
		return s.copyOutput(ctx, outDir, name)
	})
	report.Add(copied)
	report.Skipped += len(have)
	return report, err
}

func (s *Synchronizer) copyOutput(ctx context.Context, outDir, name string) error {
	src := filepath.Join(s.cfg.OutputDir(), name)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s not in output", workerpool.ErrSkipped, name)
		}
		return services.Wrap(services.ErrFilesystem, "devices", "stat", name, err)
	}
	dst := filepath.Join(outDir, name)
	tmp := fileutil.TempPath(dst)
	if err := fileutil.CopyFileVerified(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrFilesystem, "devices", "copy", name, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrFilesystem, "devices", "publish", name, err)
	}
	logging.WithContext(ctx, s.logger).Debug("file mirrored", logging.String("file", name))
	return nil
}

// HealthCheck reports device playlists that no source or custom file
// produces.
func (s *Synchronizer) HealthCheck(context.Context) stage.Health {
	known := make(map[string]struct{})
	for _, source := range s.cfg.ActiveSources() {
		known[source.Name] = struct{}{}
	}
	custom, err := fileutil.ListFiles(s.cfg.CustomDir(), "")
	if err != nil {
		return stage.Unhealthy(s.Name(), "list custom playlists: %v", err)
	}
	for _, file := range custom {
		known[strings.TrimSuffix(file, filepath.Ext(file))] = struct{}{}
	}
	var unknown []string
	for _, device := range s.cfg.Devices {
		for _, name := range device.Playlists {
			if _, ok := known[name]; !ok {
				unknown = append(unknown, device.Name+"/"+name)
			}
		}
	}
	if len(unknown) > 0 {
		return stage.Unhealthy(s.Name(), "unknown playlists: %s", strings.Join(unknown, ", "))
	}
	return stage.Healthy(s.Name())
}

// directChild reports whether path names an entry directly inside parent.
func directChild(parent, path string) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return false
	}
	return filepath.Dir(path) == filepath.Clean(parent)
}
