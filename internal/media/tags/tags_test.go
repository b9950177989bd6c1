package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHeaderTaggerRoundTripKeepsBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ogg")
	if err := os.WriteFile(path, []byte("OggS-audio"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tagger := NewHeader()

	got, err := tagger.Read(path)
	if err != nil || got != (Tags{}) {
		t.Fatalf("expected no tags on a bare file, got %+v %v", got, err)
	}
	if err := tagger.Write(path, Tags{Title: "T1", Artist: "A1"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tagger.Write(path, Tags{Title: "T2", Artist: "A2"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err = tagger.Read(path)
	if err != nil || got != (Tags{Title: "T2", Artist: "A2"}) {
		t.Fatalf("unexpected tags %+v %v", got, err)
	}
	data, _ := os.ReadFile(path)
	if _, body := splitHeader(data); string(body) != "OggS-audio" {
		t.Fatalf("body changed: %q", body)
	}
	if tagger.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", tagger.Writes())
	}
}

func TestTagsComplete(t *testing.T) {
	if (Tags{Title: "T"}).Complete() {
		t.Fatal("title alone is not complete")
	}
	if !(Tags{Title: "T", Artist: "A"}).Complete() {
		t.Fatal("expected complete")
	}
}

func TestTaglibReadMissingFile(t *testing.T) {
	if _, err := NewTaglib().Read(filepath.Join(t.TempDir(), "missing.ogg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
