// Package catalog persists songs and playlists in SQLite.
//
// A song row is keyed by its conditioned filename and carries the acoustic
// fingerprint plus the title and artist once they are resolved. A playlist row
// stores its ordered output filenames as a JSON array and is rewritten only
// when that serialization changes. The catalog and the filesystem are not
// updated transactionally; stages converge them by re-running.
package catalog
