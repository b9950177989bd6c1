package testsupport

import (
	"context"
	"testing"

	"syphon/internal/catalog"
	"syphon/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertSong registers a song for tests.
func InsertSong(t testing.TB, store *catalog.Store, input, title, artist string) {
	t.Helper()

	song := catalog.Song{Input: input, Fingerprint: []byte("fp-" + input), Title: title, Artist: artist}
	if err := store.InsertSong(context.Background(), song); err != nil {
		t.Fatalf("store.InsertSong: %v", err)
	}
}
