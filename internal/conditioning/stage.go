package conditioning

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"syphon/internal/config"
	"syphon/internal/fileutil"
	"syphon/internal/logging"
	"syphon/internal/stage"
	"syphon/internal/staging"
	"syphon/internal/workerpool"
)

// Target is one raw file waiting to be conditioned.
type Target struct {
	Source string
	Name   string
	Path   string
}

// Stage conditions every raw file that has no normalized counterpart yet.
type Stage struct {
	cfg      *config.Config
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewStage wires the conditioning stage.
func NewStage(cfg *config.Config, pipeline *Pipeline, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, pipeline: pipeline, logger: logging.NewComponentLogger(logger, "conditioning")}
}

func (s *Stage) Name() string { return "condition" }

func (s *Stage) Inputs() []string { return []string{stage.AreaDownloads} }

func (s *Stage) Outputs() []string { return []string{stage.AreaNormalized} }

// SetLogger injects the run-scoped logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "conditioning")
	s.pipeline.SetLogger(logger)
}

// Run removes temporaries left by an interrupted run, then conditions every
// pending target through the worker pool.
func (s *Stage) Run(ctx context.Context) (stage.Report, error) {
	staging.CleanTemporaries(ctx, s.logger, s.cfg.NormalizedDir())

	targets, err := Targets(s.cfg, s.logger)
	if err != nil {
		return stage.Report{}, err
	}
	s.logger.Info("conditioning targets", logging.Int("count", len(targets)))

	return workerpool.RunAll(ctx, workerpool.Options[Target]{
		Workers: s.cfg.Library.MaxWorkers,
		Policy:  workerpool.ParsePolicy(s.cfg.StagePolicy(s.Name())),
		Logger:  s.logger,
		Stage:   s.Name(),
		Label:   func(t Target) string { return t.Name },
	}, targets, func(ctx context.Context, t Target) error {
		_, err := s.pipeline.Condition(ctx, t.Path)
		return err
	})
}

// Targets lists raw files of every active source carrying the audio
// extension whose name is not yet present in the normalized area. Sources are
// visited by name; a name seen in an earlier source wins and later copies are
// reported. The result is sorted by name.
func Targets(cfg *config.Config, logger *slog.Logger) ([]Target, error) {
	done, err := fileutil.NameSet(cfg.NormalizedDir(), "")
	if err != nil {
		return nil, err
	}

	sources := cfg.ActiveSources()
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })

	seen := make(map[string]string)
	var targets []Target
	for _, source := range sources {
		dir := cfg.DownloadsDir(source.Name)
		names, err := fileutil.ListFiles(dir, cfg.Library.AudioExtension)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if first, dup := seen[name]; dup {
				logging.WarnWithContext(logger, "raw file name present in several sources; keeping the first", "duplicate_raw_name",
					logging.String("file", name),
					logging.String("kept_source", first),
					logging.String("ignored_source", source.Name),
					logging.String(logging.FieldImpact, "the ignored copy is never conditioned"),
					logging.String(logging.FieldErrorHint, "rename or remove one of the raw files"),
				)
				continue
			}
			seen[name] = source.Name
			if _, ok := done[name]; ok {
				continue
			}
			targets = append(targets, Target{Source: source.Name, Name: name, Path: filepath.Join(dir, name)})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}
