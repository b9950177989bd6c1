package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"syphon/internal/logging"
	"syphon/internal/services"
	"syphon/internal/stage"
)

type scriptedStage struct {
	report stage.Report
	err    error
	logger bool
	stage  string
}

func (s *scriptedStage) Name() string { return "encode" }

func (s *scriptedStage) Inputs() []string { return []string{stage.AreaPool} }

func (s *scriptedStage) Outputs() []string { return []string{stage.AreaOutput} }

func (s *scriptedStage) SetLogger(l *slog.Logger) {
	s.logger = l != nil
}

func (s *scriptedStage) Run(ctx context.Context) (stage.Report, error) {
	s.stage, _ = services.StageFromContext(ctx)
	return s.report, s.err
}

type recorded struct {
	name   string
	report stage.Report
	err    error
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) ObserveStage(name string, report stage.Report, _ time.Duration, err error) {
	f.calls = append(f.calls, recorded{name: name, report: report, err: err})
}

func TestRunRecordsSuccess(t *testing.T) {
	handler := &scriptedStage{report: stage.Report{Processed: 3, Skipped: 1}}
	recorder := &fakeRecorder{}

	report, err := Run(context.Background(), Options{Logger: logging.NewNop(), Recorder: recorder, Handler: handler})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Processed != 3 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !handler.logger {
		t.Fatal("expected stage logger to be injected")
	}
	if handler.stage != "encode" {
		t.Fatalf("expected stage name in context, got %q", handler.stage)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].name != "encode" || recorder.calls[0].err != nil {
		t.Fatalf("unexpected recorder calls %+v", recorder.calls)
	}
}

func TestRunWrapsFailure(t *testing.T) {
	boom := services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "failed", nil)
	recorder := &fakeRecorder{}
	_, err := Run(context.Background(), Options{Recorder: recorder, Handler: &scriptedStage{err: boom}})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected wrapped tool failure, got %v", err)
	}
	if len(recorder.calls) != 1 || !errors.Is(recorder.calls[0].err, boom) {
		t.Fatalf("expected failure to be recorded, got %+v", recorder.calls)
	}
}

func TestRunRequiresHandler(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without handler")
	}
}
