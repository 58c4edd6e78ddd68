package media

import (
	"errors"
	"strings"
	"testing"
)

func TestOutcomeOf(t *testing.T) {
	const path = "/videos/Test_Video_360p.mp4"

	ok := OutcomeOf(ProcessExited(0), path)
	if !ok.Succeeded() || ok.Path != path {
		t.Fatalf("expected success, got %+v", ok)
	}

	cases := []struct {
		sig    Signal
		code   ErrorCode
		origin Origin
		reason string
	}{
		{ProcessExited(1), CodeProcess, OriginProcess, "exited with code 1"},
		{ProcessFailed(errors.New("exec: not found")), CodeProcess, OriginProcess, "error in ffmpeg process"},
		{StreamFailed("audio", errors.New("reset")), CodeResolution, OriginStream, "error in audio stream"},
		{SinkFailed(errors.New("no space left")), CodeSink, OriginSink, "error writing to output file"},
	}
	for _, tc := range cases {
		out := OutcomeOf(tc.sig, path)
		if out.Succeeded() {
			t.Fatalf("expected failure for %s", tc.sig)
		}
		if out.Err.Code != tc.code || out.Err.Origin != tc.origin {
			t.Fatalf("unexpected classification for %s: %+v", tc.sig, out.Err)
		}
		if !strings.Contains(out.Err.Reason, tc.reason) {
			t.Fatalf("expected reason containing %q, got %q", tc.reason, out.Err.Reason)
		}
		if out.Path != "" {
			t.Fatalf("failure must not carry a path, got %q", out.Path)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Resolution("cannot open", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if CodeOf(err) != CodeResolution {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatalf("expected internal for unclassified error")
	}
}
