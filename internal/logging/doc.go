// Package logging assembles structured slog loggers and formatting helpers used
// across Syphon stages.
//
// It owns the console/JSON handlers, level and output plumbing, and
// context-aware helpers so stage code can tag log lines with the run ID, the
// stage name, and the file being processed. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
