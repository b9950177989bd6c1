package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"syphon/internal/logging"
	"syphon/internal/services"
	"syphon/internal/stage"
)

// Recorder receives the outcome of every stage execution.
type Recorder interface {
	ObserveStage(name string, report stage.Report, duration time.Duration, err error)
}

// Options controls stage execution.
type Options struct {
	Logger   *slog.Logger
	Recorder Recorder
	Handler  stage.Handler
}

// Run executes one stage with start, completion and failure logging and
// reports the outcome to the recorder.
func Run(ctx context.Context, opts Options) (stage.Report, error) {
	if opts.Handler == nil {
		return stage.Report{}, fmt.Errorf("stage handler unavailable")
	}
	name := opts.Handler.Name()

	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Strings("inputs", opts.Handler.Inputs()),
		logging.Strings("outputs", opts.Handler.Outputs()),
	)

	start := time.Now()
	report, err := opts.Handler.Run(stageCtx)
	elapsed := time.Since(start)
	if opts.Recorder != nil {
		opts.Recorder.ObserveStage(name, report, elapsed, err)
	}

	if err != nil {
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Int("processed", report.Processed),
			logging.Int("failed", report.Failed),
			logging.Duration("duration", elapsed),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return report, fmt.Errorf("stage %s: %w", name, err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("processed", report.Processed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", elapsed),
	)
	return report, nil
}
