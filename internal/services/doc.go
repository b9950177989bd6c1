// Package services defines shared utilities consumed by the library stages and
// the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the file being
//     processed for logging.
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure with errors.Is and surface an operator hint.
package services
