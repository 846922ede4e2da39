package extract

import (
	"context"
	"strings"

	"pulsechain-backend/internal/shared/metrics"
	"pulsechain-backend/internal/shared/telemetry"
)

// Attempt records one strategy's failure while walking the chain.
type Attempt struct {
	Strategy string
	Failure  *Failure
}

// Pipeline tries strategies in order until one yields non-empty text.
// The fallback chain is data, not control flow: callers inspect the
// returned attempts to decide how a total failure maps outward.
type Pipeline struct {
	Strategies []Strategy
}

// NewPipeline builds a pipeline over the given ordered strategies.
func NewPipeline(strategies ...Strategy) *Pipeline {
	return &Pipeline{Strategies: strategies}
}

// Extract runs the chain against a stored file. It returns the first
// non-empty trimmed text, or every strategy's failure when all are
// exhausted. A strategy is only consulted after its predecessor failed.
func (p *Pipeline) Extract(ctx context.Context, path, mimeType string) (string, []Attempt) {
	attempts := make([]Attempt, 0, len(p.Strategies))
	for _, strategy := range p.Strategies {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Strategy: strategy.Name(), Failure: fail(FailureUnavailable, err)})
			return "", attempts
		}

		text, failure := strategy.Extract(ctx, path, mimeType)
		if failure == nil {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				return trimmed, nil
			}
			failure = fail(FailureNoText, nil)
		}

		telemetry.Info("extract.fallback", map[string]any{
			"strategy": strategy.Name(),
			"kind":     string(failure.Kind),
		})
		metrics.IncExtractionFallback()
		attempts = append(attempts, Attempt{Strategy: strategy.Name(), Failure: failure})
	}
	return "", attempts
}

// ExternalFailure reports whether the exhausted chain ended on a remote
// dependency problem rather than a document with no recoverable text.
func ExternalFailure(attempts []Attempt) bool {
	for _, a := range attempts {
		if a.Failure == nil {
			continue
		}
		if a.Failure.Kind == FailureTimeout || a.Failure.Kind == FailureUnavailable {
			return true
		}
	}
	return false
}
