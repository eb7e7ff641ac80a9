// Package classify assigns incoming ticket text to a support category.
//
// The Classifier interface is the swap point for smarter models; the shipped
// implementation scores weighted trigger-term overlap against a fixed,
// ordered list of category profiles.
package classify

import (
	"context"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// Classifier maps ticket text to a category with a confidence score. It must
// be a pure function of its inputs and the current corpus snapshot; no hidden
// randomness.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (domain.ClassificationResult, error)
}
