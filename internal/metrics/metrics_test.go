package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"syphon/internal/stage"
)

func TestObserveStageCountsResults(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveStage("encode", stage.Report{Processed: 2, Skipped: 3}, 1500*time.Millisecond, nil)
	rec.ObserveStage("encode", stage.Report{Processed: 1, Failed: 1}, time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(rec.items.WithLabelValues("encode", ResultProcessed)); got != 3 {
		t.Fatalf("processed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(rec.items.WithLabelValues("encode", ResultSkipped)); got != 3 {
		t.Fatalf("skipped = %v, want 3", got)
	}
	if got := testutil.ToFloat64(rec.duration.WithLabelValues("encode")); got != 1 {
		t.Fatalf("duration = %v, want last observation", got)
	}
	if got := testutil.ToFloat64(rec.stageErrors.WithLabelValues("encode")); got != 1 {
		t.Fatalf("errors = %v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveStage("pool", stage.Report{Processed: 1}, time.Second, nil)
	rec.MarkFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "syphon.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`syphon_stage_items_total{result="processed",stage="pool"} 1`,
		`syphon_last_run_timestamp_seconds 1.7e+09`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, data)
		}
	}

	if err := rec.WriteTextfile(""); err != nil {
		t.Fatalf("expected empty path to be a no-op, got %v", err)
	}
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "metrics.txt")); err == nil {
		t.Fatal("expected error for non .prom path")
	}
}
