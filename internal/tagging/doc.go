// Package tagging resolves song titles and artists and maintains the pool,
// the deduplicated area holding one tagged file per distinct (title, artist).
//
// Deduplication is structural: the pool file name is derived from the pair,
// so two catalog songs with the same tags can only ever map to one file.
package tagging
