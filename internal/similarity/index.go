// Package similarity ranks historical resolved tickets against a new ticket.
package similarity

import (
	"context"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// CorpusReader is the read-side of the corpus this index searches. Reads see
// the corpus as of submission time; brief staleness is acceptable.
type CorpusReader interface {
	ListEntries(ctx context.Context) ([]domain.CorpusEntry, error)
}

// Index finds the most similar historical tickets. Implementations return the
// top-k matches by descending similarity plus their arithmetic-mean aggregate
// (0 when the corpus is empty), and must terminate in O(corpus size).
type Index interface {
	Search(ctx context.Context, ticket *domain.Ticket, k int) (domain.SimilarityResult, error)
}
