package loudness

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"syphon/internal/toolexec"
)

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   Measurement
	}{
		{name: "dot decimal", stdout: "-15.62dBFS  -3.10dBFS  /tmp/a.ogg\n", want: Measurement{Level: -16}},
		{name: "comma decimal", stdout: "-11,4dBFS -2,0dBFS a.ogg", want: Measurement{Level: -11}},
		{name: "already at target", stdout: "ADJUST_NEEDED 0\n", want: Measurement{NoAdjustment: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasurement(tt.stdout)
			if err != nil {
				t.Fatalf("ParseMeasurement returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMeasurementRejectsUnknownOutput(t *testing.T) {
	for _, stdout := range []string{"", "segfault", "abcdBFS a.ogg"} {
		if _, err := ParseMeasurement(stdout); !errors.Is(err, toolexec.ErrUnexpectedOutput) {
			t.Fatalf("expected ErrUnexpectedOutput for %q, got %v", stdout, err)
		}
	}
}

func TestDelta(t *testing.T) {
	if d := (Measurement{Level: -16}).Delta(-12); d != 4 {
		t.Fatalf("expected +4, got %d", d)
	}
	if d := (Measurement{Level: -12}).Delta(-12); d != 0 {
		t.Fatalf("expected 0, got %d", d)
	}
	if d := (Measurement{NoAdjustment: true, Level: -40}).Delta(-12); d != 0 {
		t.Fatalf("expected 0 when no adjustment is needed, got %d", d)
	}
}

func TestAdjustBuildsArguments(t *testing.T) {
	runner := &toolexec.FakeRunner{}
	tool := New(runner, "")
	if err := tool.Adjust(context.Background(), "/n/.part-a.ogg", -3, 160); err != nil {
		t.Fatalf("Adjust returned error: %v", err)
	}
	calls := runner.Calls()
	if len(calls) != 1 || calls[0].Name != "normalize-ogg" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	want := []string{"--ogg", "--bitrate", "160", "-g", "-3db", "/n/.part-a.ogg"}
	if !reflect.DeepEqual(calls[0].Args, want) {
		t.Fatalf("args = %v, want %v", calls[0].Args, want)
	}
}
