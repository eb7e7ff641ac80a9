package domain

import "time"

// CorpusEntry is a resolved ticket plus its outcome, immutable once appended.
// The corpus is the reference data set for classification and similarity search.
type CorpusEntry struct {
	ID          string
	Title       string
	Description string
	Department  string
	Priority    TicketPriority
	Category    string
	Resolution  string
	ResolvedAt  time.Time
}
