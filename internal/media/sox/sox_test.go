package sox

import (
	"context"
	"reflect"
	"testing"

	"syphon/internal/toolexec"
)

func TestCommands(t *testing.T) {
	runner := &toolexec.FakeRunner{}
	tool := New(runner, "", Silence{MaxDuration: "120", Threshold: "2%"})
	ctx := context.Background()

	if err := tool.TrimLeadingSilence(ctx, "in.ogg", "out.ogg"); err != nil {
		t.Fatalf("TrimLeadingSilence: %v", err)
	}
	if err := tool.Reverse(ctx, "out.ogg", "rev.ogg"); err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	calls := runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected two invocations, got %d", len(calls))
	}
	if want := []string{"in.ogg", "out.ogg", "silence", "1", "120", "2%"}; !reflect.DeepEqual(calls[0].Args, want) {
		t.Fatalf("trim args = %v, want %v", calls[0].Args, want)
	}
	if want := []string{"out.ogg", "rev.ogg", "reverse"}; !reflect.DeepEqual(calls[1].Args, want) {
		t.Fatalf("reverse args = %v, want %v", calls[1].Args, want)
	}
	if calls[0].Name != "sox" {
		t.Fatalf("expected default binary, got %q", calls[0].Name)
	}
}
