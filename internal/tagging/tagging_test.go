package tagging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"syphon/internal/catalog"
	"syphon/internal/config"
	"syphon/internal/logging"
	"syphon/internal/media/tags"
	"syphon/internal/tagging"
	"syphon/internal/testsupport"
)

func writeNormalized(t *testing.T, cfg *config.Config, tagger *tags.HeaderTagger, name string, embedded tags.Tags) {
	t.Helper()
	path := filepath.Join(cfg.NormalizedDir(), name)
	testsupport.WriteText(t, path, "audio:"+name)
	if embedded != (tags.Tags{}) {
		if err := tagger.Write(path, embedded); err != nil {
			t.Fatalf("write tags: %v", err)
		}
	}
}

func TestPoolNameSanitizesSegments(t *testing.T) {
	got := tagging.PoolName("AC/DC Live", ".hidden", ".ogg")
	if got != "AC-DC Live _ _.hidden.ogg" {
		t.Fatalf("unexpected pool name %q", got)
	}
}

func TestSelectCanonicalKeepsFirstInputPerPair(t *testing.T) {
	songs := []catalog.Song{
		{Input: "3-b.ogg", Title: "Song", Artist: "Band"},
		{Input: "1-a.ogg", Title: "Song", Artist: "Band"},
		{Input: "2-c.ogg", Title: "Other", Artist: "Band"},
		{Input: "4-d.ogg"},
	}
	got := tagging.SelectCanonical(songs, ".ogg")
	if len(got) != 2 {
		t.Fatalf("expected two canonical songs, got %+v", got)
	}
	if got[0].Input != "2-c.ogg" || got[1].Input != "1-a.ogg" {
		t.Fatalf("unexpected canonical selection %+v", got)
	}
}

func TestResolverPrefersEmbeddedTagsAndFallsBackToFilename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Library.FilenameFallback = true
	store := testsupport.MustOpenCatalog(t, cfg)
	tagger := tags.NewHeader()

	writeNormalized(t, cfg, tagger, "1-x.ogg", tags.Tags{Title: " Song ", Artist: "Band"})
	writeNormalized(t, cfg, tagger, "2-Artist - Title.ogg", tags.Tags{})
	writeNormalized(t, cfg, tagger, "3-untitled.ogg", tags.Tags{})
	for _, input := range []string{"1-x.ogg", "2-Artist - Title.ogg", "3-untitled.ogg", "4-gone.ogg"} {
		testsupport.InsertSong(t, store, input, "", "")
	}

	resolver := tagging.NewResolver(cfg, store, tagger, logging.NewNop())
	report, err := resolver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Processed != 2 || report.Skipped != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	checks := map[string][2]string{
		"1-x.ogg":              {"Song", "Band"},
		"2-Artist - Title.ogg": {"Title", "Artist"},
		"3-untitled.ogg":       {"", ""},
	}
	for input, want := range checks {
		song, err := store.GetSong(context.Background(), input)
		if err != nil || song == nil {
			t.Fatalf("GetSong(%s): %v", input, err)
		}
		if song.Title != want[0] || song.Artist != want[1] {
			t.Fatalf("%s resolved to (%q, %q), want %v", input, song.Title, song.Artist, want)
		}
	}
}

func TestResolverWithoutFallbackLeavesFilenameOnlySongs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Library.FilenameFallback = false
	store := testsupport.MustOpenCatalog(t, cfg)
	tagger := tags.NewHeader()
	writeNormalized(t, cfg, tagger, "2-Artist - Title.ogg", tags.Tags{})
	testsupport.InsertSong(t, store, "2-Artist - Title.ogg", "", "")

	report, err := tagging.NewResolver(cfg, store, tagger, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Processed != 0 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestAssignerDeduplicatesAndTagsPool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	tagger := tags.NewHeader()

	writeNormalized(t, cfg, tagger, "1-a.ogg", tags.Tags{})
	writeNormalized(t, cfg, tagger, "2-b.ogg", tags.Tags{})
	writeNormalized(t, cfg, tagger, "3-c.ogg", tags.Tags{})
	testsupport.InsertSong(t, store, "1-a.ogg", "Song", "Band")
	testsupport.InsertSong(t, store, "2-b.ogg", "Song", "Band")
	testsupport.InsertSong(t, store, "3-c.ogg", "Other", "Band")

	assigner := tagging.NewAssigner(cfg, store, tagger, logging.NewNop())
	report, err := assigner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Processed != 2 {
		t.Fatalf("expected two pool files written, got %+v", report)
	}

	names := testsupport.ListDir(t, cfg.PoolDir())
	if len(names) != 2 || names[0] != "Other _ Band.ogg" || names[1] != "Song _ Band.ogg" {
		t.Fatalf("unexpected pool contents %v", names)
	}
	got, err := tagger.Read(filepath.Join(cfg.PoolDir(), "Song _ Band.ogg"))
	if err != nil {
		t.Fatalf("read pool tags: %v", err)
	}
	if got != (tags.Tags{Title: "Song", Artist: "Band"}) {
		t.Fatalf("unexpected pool tags %+v", got)
	}
	data, err := os.ReadFile(filepath.Join(cfg.PoolDir(), "Song _ Band.ogg"))
	if err != nil {
		t.Fatalf("read pool file: %v", err)
	}
	if want := "audio:1-a.ogg"; string(data[len(data)-len(want):]) != want {
		t.Fatalf("expected canonical 1-a.ogg content, got %q", data)
	}
}

func TestAssignerSecondRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	tagger := tags.NewHeader()
	writeNormalized(t, cfg, tagger, "1-a.ogg", tags.Tags{})
	testsupport.InsertSong(t, store, "1-a.ogg", "Song", "Band")

	assigner := tagging.NewAssigner(cfg, store, tagger, logging.NewNop())
	if _, err := assigner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := tagger.Writes()

	report, err := assigner.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if tagger.Writes() != before {
		t.Fatalf("expected no tag writes on second run, got %d more", tagger.Writes()-before)
	}
	if report.Processed != 0 || report.Skipped != 1 {
		t.Fatalf("unexpected second report %+v", report)
	}
}

func TestAssignerCorrectsDriftedTags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	tagger := tags.NewHeader()
	writeNormalized(t, cfg, tagger, "1-a.ogg", tags.Tags{})
	testsupport.InsertSong(t, store, "1-a.ogg", "Song", "Band")

	poolPath := filepath.Join(cfg.PoolDir(), "Song _ Band.ogg")
	testsupport.WriteText(t, poolPath, "audio")
	if err := tagger.Write(poolPath, tags.Tags{Title: "Wrong", Artist: "Band"}); err != nil {
		t.Fatalf("seed tags: %v", err)
	}

	if _, err := tagging.NewAssigner(cfg, store, tagger, logging.NewNop()).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got, err := tagger.Read(poolPath)
	if err != nil {
		t.Fatalf("read tags: %v", err)
	}
	if got.Title != "Song" {
		t.Fatalf("expected corrected title, got %+v", got)
	}
}

func TestCopyAndTagSkipsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	assigner := tagging.NewAssigner(cfg, store, tags.NewHeader(), logging.NewNop())

	report, err := assigner.Run(context.Background())
	if err != nil || report.Total() != 0 {
		t.Fatalf("expected empty run, got %+v err=%v", report, err)
	}

	testsupport.InsertSong(t, store, "gone.ogg", "Song", "Band")
	report, err = assigner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Skipped != 1 {
		t.Fatalf("expected skip for missing source, got %+v", report)
	}
	if names := testsupport.ListDir(t, cfg.PoolDir()); len(names) != 0 {
		t.Fatalf("expected empty pool, got %v", names)
	}
}
