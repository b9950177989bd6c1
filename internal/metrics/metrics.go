// Package metrics records per-stage run outcomes and exports them in the
// node-exporter textfile format.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"syphon/internal/stage"
)

// Result label values.
const (
	ResultProcessed = "processed"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
)

// Recorder collects stage metrics for one run in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	items       *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	stageErrors *prometheus.CounterVec
	lastRun     prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "syphon_stage_items_total",
			Help: "Items handled by a stage, by result",
		}, []string{"stage", "result"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "syphon_stage_duration_seconds",
			Help: "Wall time of the last execution of a stage",
		}, []string{"stage"}),
		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "syphon_stage_errors_total",
			Help: "Stage executions that returned an error",
		}, []string{"stage"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "syphon_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// ObserveStage records the outcome of one stage execution.
func (r *Recorder) ObserveStage(name string, report stage.Report, duration time.Duration, err error) {
	r.items.WithLabelValues(name, ResultProcessed).Add(float64(report.Processed))
	r.items.WithLabelValues(name, ResultSkipped).Add(float64(report.Skipped))
	r.items.WithLabelValues(name, ResultFailed).Add(float64(report.Failed))
	r.duration.WithLabelValues(name).Set(duration.Seconds())
	if err != nil {
		r.stageErrors.WithLabelValues(name).Inc()
	}
}

// MarkFinished stamps the run completion time.
func (r *Recorder) MarkFinished(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path, replacing it atomically. An
// empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if !strings.HasSuffix(path, ".prom") {
		return errors.New("metrics textfile must end in .prom")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
