// Package config loads, normalizes, and validates Syphon configuration.
//
// Configuration is read once from TOML, expanded and defaulted, and then
// passed as an immutable value into every stage. The package also owns the
// library layout: every filesystem area (downloads, normalized, pool, output,
// playlists, custom, devices) is derived from the base path here so stages
// never build those paths by hand.
package config
