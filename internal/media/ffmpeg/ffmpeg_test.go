package ffmpeg

import (
	"context"
	"reflect"
	"testing"

	"syphon/internal/toolexec"
)

func TestEncodePreservesStreamMetadata(t *testing.T) {
	runner := &toolexec.FakeRunner{}
	if err := New(runner, "", 2).Encode(context.Background(), "pool/T _ A.ogg", "output/.part-T _ A.mp3"); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	calls := runner.Calls()
	if len(calls) != 1 || calls[0].Name != "ffmpeg" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	want := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", "pool/T _ A.ogg",
		"-map_metadata", "0:s:0",
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		"output/.part-T _ A.mp3",
	}
	if !reflect.DeepEqual(calls[0].Args, want) {
		t.Fatalf("args = %v, want %v", calls[0].Args, want)
	}
}
