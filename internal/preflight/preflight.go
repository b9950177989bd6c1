package preflight

import (
	"context"

	"syphon/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks every directory a run writes to.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Base directory", cfg.Paths.BaseDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	for _, source := range cfg.ActiveSources() {
		if ctx.Err() != nil {
			break
		}
		results = append(results, CheckDirectoryAccess("Downloads "+source.Name, cfg.DownloadsDir(source.Name)))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
