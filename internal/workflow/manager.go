package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"syphon/internal/catalog"
	"syphon/internal/conditioning"
	"syphon/internal/config"
	"syphon/internal/devicesync"
	"syphon/internal/encoding"
	"syphon/internal/fetch"
	"syphon/internal/logging"
	"syphon/internal/metrics"
	"syphon/internal/notifications"
	"syphon/internal/playlist"
	"syphon/internal/reconcile"
	"syphon/internal/services"
	"syphon/internal/stage"
	"syphon/internal/stageexec"
	"syphon/internal/tagging"
)

// ErrLocked reports another run holding the library lock.
var ErrLocked = errors.New("library is locked by another run")

// RunOptions selects what a run executes.
type RunOptions struct {
	// SkipFetch leaves the fetch stage out regardless of configuration.
	SkipFetch bool
	// Only restricts the run to the named stages, kept in graph order.
	Only []string
}

// StageResult is the outcome of one stage in a run.
type StageResult struct {
	Name     string
	Report   stage.Report
	Duration time.Duration
	Err      error
}

// Summary describes a finished run.
type Summary struct {
	RunID  string
	Stages []StageResult
}

// Manager builds the stage graph for a library and runs it.
type Manager struct {
	cfg      *config.Config
	store    *catalog.Store
	collab   Collaborators
	notifier notifications.Service
	logger   *slog.Logger
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *catalog.Store, collab Collaborators, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		collab:   collab,
		notifier: notifications.NewService(cfg),
		logger:   logger,
	}
}

// SetNotifier replaces the run notification service.
func (m *Manager) SetNotifier(notifier notifications.Service) {
	if notifier != nil {
		m.notifier = notifier
	}
}

// Stages returns every stage handler, fetch included only when enabled.
func (m *Manager) Stages(skipFetch bool) []stage.Handler {
	pipeline := conditioning.NewPipeline(
		m.cfg.NormalizedDir(), m.cfg.Library.TargetGain,
		m.collab.Meter, m.collab.Bitrate, m.collab.Editor, m.logger,
	)
	var handlers []stage.Handler
	if m.cfg.Workflow.Fetch && !skipFetch {
		handlers = append(handlers, fetch.New(m.cfg, m.collab.Runner, m.logger))
	}
	return append(handlers,
		conditioning.NewStage(m.cfg, pipeline, m.logger),
		reconcile.New(m.cfg, m.store, m.collab.Fingerprinter, m.logger),
		tagging.NewResolver(m.cfg, m.store, m.collab.Tagger, m.logger),
		tagging.NewAssigner(m.cfg, m.store, m.collab.Tagger, m.logger),
		encoding.NewEncoder(m.cfg, m.collab.Converter, m.collab.Tagger, m.logger),
		playlist.NewBuilder(m.cfg, m.store, m.logger),
		devicesync.NewSynchronizer(m.cfg, m.logger),
	)
}

// Graph returns the stage graph for a run.
func (m *Manager) Graph(skipFetch bool) (*stage.Graph, error) {
	return stage.NewGraph(m.Stages(skipFetch)...)
}

// Run executes the selected stages in dependency order under the library
// lock. It stops at the first stage that returns an error.
func (m *Manager) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	lock := flock.New(m.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w: %s", ErrLocked, m.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release library lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no run is active"),
				logging.String(logging.FieldImpact, "next run may report the library as locked"),
			)
		}
	}()

	summary := Summary{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, m.logger)

	pruned := logging.PruneLogs(logger, m.cfg.Paths.LogDir, config.LogFilePattern, m.cfg.Logging.RetentionDays, m.cfg.LogFilePath())
	if pruned > 0 {
		logger.Info("old logs pruned", logging.Int("count", pruned))
	}
	if err := m.cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "workflow", "ensure directories", m.cfg.Paths.BaseDir, err)
	}

	graph, err := m.Graph(opts.SkipFetch)
	if err != nil {
		return summary, err
	}
	selected, err := graph.Select(opts.Only)
	if err != nil {
		return summary, err
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Strings("stages", stage.Names(selected)),
		logging.Bool("parallel_stages", m.cfg.Workflow.ParallelStages),
	)

	rec := &collector{metrics: metrics.NewRecorder()}
	start := time.Now()
	if m.cfg.Workflow.ParallelStages {
		err = m.runLevels(ctx, graph, selected, rec)
	} else {
		err = m.runSequential(ctx, selected, rec)
	}
	summary.Stages = rec.results()

	rec.metrics.MarkFinished(time.Now())
	if werr := rec.metrics.WriteTextfile(m.cfg.Metrics.Textfile); werr != nil {
		logging.WarnWithContext(logger, "metrics export failed", "metrics_write_failed",
			logging.Error(werr),
			logging.String(logging.FieldErrorHint, "check metrics.textfile directory permissions"),
			logging.String(logging.FieldImpact, "run metrics not exported"),
		)
	}

	report := summary.report(time.Since(start))
	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failure",
			logging.Duration("duration", report.Duration),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		m.notify(ctx, logger, func(nctx context.Context) error {
			return m.notifier.NotifyRunFailed(nctx, report, err)
		})
		return summary, err
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("processed", report.Processed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration),
	)
	m.notify(ctx, logger, func(nctx context.Context) error {
		return m.notifier.NotifyRunCompleted(nctx, report)
	})
	return summary, nil
}

// notify delivers a run notification even when ctx is already cancelled.
func (m *Manager) notify(ctx context.Context, logger *slog.Logger, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run outcome not delivered"),
		)
	}
}

func (s Summary) report(duration time.Duration) notifications.RunReport {
	report := notifications.RunReport{RunID: s.RunID, Stages: len(s.Stages), Duration: duration}
	for _, result := range s.Stages {
		report.Processed += result.Report.Processed
		report.Skipped += result.Report.Skipped
		report.Failed += result.Report.Failed
	}
	return report
}

func (m *Manager) runSequential(ctx context.Context, handlers []stage.Handler, rec *collector) error {
	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := stageexec.Run(ctx, stageexec.Options{Logger: m.logger, Recorder: rec, Handler: h}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) runLevels(ctx context.Context, graph *stage.Graph, selected []stage.Handler, rec *collector) error {
	wanted := make(map[string]struct{}, len(selected))
	for _, h := range selected {
		wanted[h.Name()] = struct{}{}
	}
	for _, level := range graph.Levels() {
		g, gctx := errgroup.WithContext(ctx)
		for _, h := range level {
			if _, ok := wanted[h.Name()]; !ok {
				continue
			}
			g.Go(func() error {
				_, err := stageexec.Run(gctx, stageexec.Options{Logger: m.logger, Recorder: rec, Handler: h})
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// collector fans stage outcomes out to the metrics recorder and the run
// summary.
type collector struct {
	metrics *metrics.Recorder

	mu      sync.Mutex
	entries []StageResult
}

func (c *collector) ObserveStage(name string, report stage.Report, duration time.Duration, err error) {
	c.metrics.ObserveStage(name, report, duration, err)
	c.mu.Lock()
	c.entries = append(c.entries, StageResult{Name: name, Report: report, Duration: duration, Err: err})
	c.mu.Unlock()
}

func (c *collector) results() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StageResult(nil), c.entries...)
}
