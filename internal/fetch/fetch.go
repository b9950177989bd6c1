package fetch

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/toolexec"
	"syphon/internal/workerpool"
)

// OutputTemplate names downloads "<playlist index>-<title>.<ext>", the form
// the playlist ordering relies on.
const OutputTemplate = "%(playlist_index)s-%(title)s.%(ext)s"

// Fetcher retrieves new material for every active source.
type Fetcher struct {
	cfg    *config.Config
	runner toolexec.Runner
	logger *slog.Logger
}

// New constructs the fetch stage.
func New(cfg *config.Config, runner toolexec.Runner, logger *slog.Logger) *Fetcher {
	return &Fetcher{cfg: cfg, runner: runner, logger: logging.NewComponentLogger(logger, "fetch")}
}

func (f *Fetcher) Name() string { return "fetch" }

func (f *Fetcher) Inputs() []string { return []string{stage.AreaSources} }

func (f *Fetcher) Outputs() []string { return []string{stage.AreaDownloads} }

// SetLogger injects the run-scoped logger.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	f.logger = logging.NewComponentLogger(logger, "fetch")
}

// Run fetches every active source concurrently.
func (f *Fetcher) Run(ctx context.Context) (stage.Report, error) {
	return workerpool.RunAll(ctx, workerpool.Options[config.Source]{
		Workers: f.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(f.cfg.StagePolicy(f.Name())),
		Logger:  f.logger,
		Stage:   f.Name(),
		Label:   func(s config.Source) string { return s.Name },
	}, f.cfg.ActiveSources(), f.Fetch)
}

// Args returns the fetch argument list for a source.
func Args(archive, url string) []string {
	return []string{
		"-i",
		"--download-archive", archive,
		"--extract-audio",
		"--audio-format", "vorbis",
		"-o", OutputTemplate,
		url,
	}
}

// Fetch downloads the source's new entries into its download directory. The
// download archive keeps entries from being fetched twice.
func (f *Fetcher) Fetch(ctx context.Context, source config.Source) error {
	dir := f.cfg.DownloadsDir(source.Name)
	if _, err := fileutil.EnsureDir(dir); err != nil {
		return services.Wrap(services.ErrFilesystem, "fetch", "ensure dir", dir, err)
	}
	before, err := fileutil.ListFiles(dir, f.cfg.Library.AudioExtension)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "fetch", "list", dir, err)
	}

	result, err := f.runner.Run(ctx, toolexec.Command{
		Name: f.cfg.Tools.Fetch,
		Args: Args(f.cfg.ArchivePath(source.Name), source.URL),
		Dir:  dir,
	})
	if err != nil {
		return err
	}

	after, err := fileutil.ListFiles(dir, f.cfg.Library.AudioExtension)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "fetch", "list", dir, err)
	}
	logger := logging.WithContext(ctx, f.logger)
	logger.Info("source fetched",
		logging.String("url", source.URL),
		logging.Int("new_files", len(after)-len(before)),
	)
	if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
		logger.Debug("fetch stderr", logging.String("stderr", stderr))
	}
	return nil
}

// HealthCheck reports whether the fetch tool can be found.
func (f *Fetcher) HealthCheck(context.Context) stage.Health {
	if len(f.cfg.ActiveSources()) == 0 {
		return stage.Unhealthy(f.Name(), "no active sources configured")
	}
	if _, err := exec.LookPath(f.cfg.Tools.Fetch); err != nil {
		return stage.Unhealthy(f.Name(), "binary %q not found", f.cfg.Tools.Fetch)
	}
	return stage.Healthy(f.Name())
}
