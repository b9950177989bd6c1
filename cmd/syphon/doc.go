// Package main hosts the syphon CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the structured
// logger, opens the catalog and hands control to the workflow manager.
// Subcommands cover a full library run, stage inspection, status counts,
// readiness checks, device watching and configuration scaffolding.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through commands or flags.
package main
