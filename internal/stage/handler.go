package stage

import (
	"context"
	"fmt"
	"log/slog"

	"syphon/internal/workerpool"
)

// Library areas exchanged between stages. An area nobody produces is an
// external input (configuration, user files).
const (
	AreaSources    = "sources"
	AreaDownloads  = "downloads"
	AreaNormalized = "normalized"
	AreaSongs      = "catalog.songs"
	AreaTags       = "catalog.tags"
	AreaPool       = "pool"
	AreaOutput     = "output"
	AreaCustom     = "custom"
	AreaPlaylists  = "playlists"
	AreaDevices    = "devices"
)

// Report counts what a stage did in one run.
type Report = workerpool.Result

// Handler describes the contract the workflow needs from each stage.
type Handler interface {
	Name() string
	// Inputs lists the areas the stage reads.
	Inputs() []string
	// Outputs lists the areas the stage writes.
	Outputs() []string
	Run(ctx context.Context) (Report, error)
}

// LoggerAware is implemented by stages that accept a run-scoped logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// HealthChecker is implemented by stages that can report readiness before a run.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}

// Health is a stage's readiness verdict. Detail explains a stage that is not
// ready.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports name as ready.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports name as not ready, formatting the detail.
func Unhealthy(name, format string, args ...any) Health {
	return Health{Name: name, Detail: fmt.Sprintf(format, args...)}
}
