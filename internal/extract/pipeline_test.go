package extract

import (
	"context"
	"testing"
)

type stubStrategy struct {
	name    string
	text    string
	failure *Failure
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, path, mimeType string) (string, *Failure) {
	s.calls++
	return s.text, s.failure
}

func TestPipelineShortCircuitsOnFirstSuccess(t *testing.T) {
	native := &stubStrategy{name: "native", text: "Lab results: normal"}
	local := &stubStrategy{name: "local"}
	remote := &stubStrategy{name: "remote"}

	text, attempts := NewPipeline(native, local, remote).Extract(context.Background(), "f.pdf", "application/pdf")
	if text != "Lab results: normal" {
		t.Fatalf("expected native text, got %q", text)
	}
	if attempts != nil {
		t.Fatalf("expected no attempts on success, got %v", attempts)
	}
	if local.calls != 0 || remote.calls != 0 {
		t.Fatalf("later strategies must not run after a success")
	}
}

func TestPipelineFallsBackInOrder(t *testing.T) {
	native := &stubStrategy{name: "native", failure: fail(FailureNoText, nil)}
	local := &stubStrategy{name: "local", text: "Patient: Jane Doe"}
	remote := &stubStrategy{name: "remote"}

	text, _ := NewPipeline(native, local, remote).Extract(context.Background(), "f.pdf", "application/pdf")
	if text != "Patient: Jane Doe" {
		t.Fatalf("expected local OCR text, got %q", text)
	}
	if native.calls != 1 || local.calls != 1 {
		t.Fatalf("expected native then local, got native=%d local=%d", native.calls, local.calls)
	}
	if remote.calls != 0 {
		t.Fatalf("remote must not run when local OCR succeeds")
	}
}

func TestPipelineTreatsWhitespaceTextAsNoText(t *testing.T) {
	blank := &stubStrategy{name: "blank", text: "   \n\t "}
	next := &stubStrategy{name: "next", text: "real text"}

	text, _ := NewPipeline(blank, next).Extract(context.Background(), "f.pdf", "application/pdf")
	if text != "real text" {
		t.Fatalf("expected fallback past whitespace-only text, got %q", text)
	}
}

func TestPipelineExhaustionReportsEveryAttempt(t *testing.T) {
	native := &stubStrategy{name: "native", failure: fail(FailureParse, nil)}
	local := &stubStrategy{name: "local", failure: fail(FailureNoText, nil)}
	remote := &stubStrategy{name: "remote", failure: fail(FailureTimeout, nil)}

	text, attempts := NewPipeline(native, local, remote).Extract(context.Background(), "f.pdf", "application/pdf")
	if text != "" {
		t.Fatalf("expected no text, got %q", text)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	kinds := []FailureKind{FailureParse, FailureNoText, FailureTimeout}
	for i, attempt := range attempts {
		if attempt.Failure.Kind != kinds[i] {
			t.Fatalf("attempt %d: expected %s, got %s", i, kinds[i], attempt.Failure.Kind)
		}
	}
}

func TestExternalFailure(t *testing.T) {
	cases := []struct {
		name     string
		attempts []Attempt
		want     bool
	}{
		{"no text anywhere", []Attempt{
			{Failure: fail(FailureNoText, nil)},
			{Failure: fail(FailureNoText, nil)},
		}, false},
		{"remote timeout", []Attempt{
			{Failure: fail(FailureNoText, nil)},
			{Failure: fail(FailureTimeout, nil)},
		}, true},
		{"remote unavailable", []Attempt{
			{Failure: fail(FailureParse, nil)},
			{Failure: fail(FailureUnavailable, nil)},
		}, true},
	}
	for _, tc := range cases {
		if got := ExternalFailure(tc.attempts); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestPipelineStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strategy := &stubStrategy{name: "native", text: "should not run"}
	text, attempts := NewPipeline(strategy).Extract(ctx, "f.pdf", "application/pdf")
	if text != "" || len(attempts) == 0 {
		t.Fatalf("expected cancelled extraction to fail")
	}
	if strategy.calls != 0 {
		t.Fatalf("strategy must not run after cancellation")
	}
}
