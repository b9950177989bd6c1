package id3

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureWritesMissingFramesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "T1 _ A1.mp3")
	// A headerless payload stands in for MPEG frames; id3v2 only rewrites the tag.
	if err := os.WriteFile(path, []byte{0xff, 0xfb, 0x90, 0x00, 0x00, 0x00}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := Frames{Title: "T1", Artist: "A1"}
	changed, err := Ensure(path, want)
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected first Ensure to write frames")
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	changed, err = Ensure(path, want)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if changed {
		t.Fatal("expected no rewrite when frames already match")
	}
}
