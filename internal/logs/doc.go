// Package logs reads the daily run logs for the CLI.
//
// Tail returns the last lines of a log file or everything after a byte
// offset, optionally filtered by substring, and can poll for new lines in
// follow mode. Latest picks the newest daily file.
package logs
