package extract

import (
	"context"
	"fmt"
)

// FailureKind classifies why a strategy could not produce text.
type FailureKind string

const (
	// FailureNoText means the strategy ran but found no usable text.
	FailureNoText FailureKind = "no-text"
	// FailureParse means the source could not be decoded by the strategy.
	FailureParse FailureKind = "parse-error"
	// FailureTimeout means a remote call exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureUnavailable means a required external service misbehaved.
	FailureUnavailable FailureKind = "unavailable"
)

// Failure is the tagged result a strategy returns instead of text.
type Failure struct {
	Kind  FailureKind
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Cause)
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error { return f.Cause }

func fail(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, Cause: cause}
}

// Strategy attempts text extraction from a stored file.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path, mimeType string) (string, *Failure)
}
