package similarity

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// DefaultTopK is the number of matches returned when the caller passes k <= 0.
const DefaultTopK = 5

// stopwords are dropped before overlap scoring; they carry no signal and
// inflate scores between unrelated tickets.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "for": {}, "from": {}, "in": {},
	"is": {}, "it": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "our": {}, "the": {}, "to": {}, "was": {}, "we": {}, "with": {},
	"i": {}, "am": {}, "be": {}, "at": {}, "this": {}, "that": {},
}

// KeywordIndex scores token-set overlap between the new ticket's text and
// every corpus entry.
type KeywordIndex struct {
	corpus CorpusReader
}

// NewKeywordIndex builds an index over the given corpus.
func NewKeywordIndex(corpus CorpusReader) *KeywordIndex {
	return &KeywordIndex{corpus: corpus}
}

// Search returns the top-k entries by descending similarity. Ties resolve to
// the more recently resolved entry. The matches are read-only snapshots.
func (x *KeywordIndex) Search(ctx context.Context, ticket *domain.Ticket, k int) (domain.SimilarityResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	entries, err := x.corpus.ListEntries(ctx)
	if err != nil {
		return domain.SimilarityResult{}, err
	}
	if len(entries) == 0 {
		return domain.SimilarityResult{}, nil
	}

	query := tokens(ticket.Title + " " + ticket.Description)
	refs := make([]domain.SimilarTicketRef, 0, len(entries))
	for _, entry := range entries {
		score := overlapScore(query, tokens(entry.Title+" "+entry.Description))
		refs = append(refs, domain.SimilarTicketRef{
			ID:         entry.ID,
			Title:      entry.Title,
			Similarity: score,
			Resolution: entry.Resolution,
			ResolvedAt: entry.ResolvedAt,
		})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Similarity != refs[j].Similarity {
			return refs[i].Similarity > refs[j].Similarity
		}
		return refs[i].ResolvedAt.After(refs[j].ResolvedAt)
	})
	if len(refs) > k {
		refs = refs[:k]
	}

	sum := 0
	for _, r := range refs {
		sum += r.Similarity
	}
	return domain.SimilarityResult{
		Matches:   refs,
		Aggregate: sum / len(refs),
	}, nil
}

// overlapScore is the overlap coefficient of the two token sets, scaled to
// 0-100: |a ∩ b| / min(|a|, |b|).
func overlapScore(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for t := range small {
		if _, ok := large[t]; ok {
			shared++
		}
	}
	return 100 * shared / len(small)
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		t := word.String()
		word.Reset()
		if _, stop := stopwords[t]; !stop {
			set[t] = struct{}{}
		}
	}
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return set
}
