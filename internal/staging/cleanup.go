// Package staging removes the in-progress artifacts an interrupted run leaves
// in the library areas.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"syphon/internal/fileutil"
	"syphon/internal/logging"
)

// CleanResult contains the outcome of a cleanup pass.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanTemporaries removes every in-progress artifact (".part-" and ".step-"
// names) directly under each dir. Missing directories are ignored. It must
// only run while no stage writes to dirs.
func CleanTemporaries(ctx context.Context, logger *slog.Logger, dirs ...string) CleanResult {
	result := CleanResult{}
	for _, dir := range dirs {
		if ctx.Err() != nil {
			return result
		}
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			}
			continue
		}
		for _, entry := range entries {
			if !fileutil.IsTemporary(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				logging.WarnWithContext(logger, "failed to remove stale temporary", "staging_cleanup_failed",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check base_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
				continue
			}
			result.Removed = append(result.Removed, path)
			if logger != nil {
				logger.Info("removed stale temporary",
					logging.String("path", path),
					logging.String(logging.FieldEventType, "staging_cleanup"),
				)
			}
		}
	}
	return result
}
