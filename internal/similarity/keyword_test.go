package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/triage-engine/internal/domain"
)

type staticCorpus struct {
	entries []domain.CorpusEntry
	err     error
}

func (c *staticCorpus) ListEntries(context.Context) ([]domain.CorpusEntry, error) {
	return c.entries, c.err
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func TestSearch_RanksByOverlap(t *testing.T) {
	t.Parallel()

	corpus := &staticCorpus{entries: []domain.CorpusEntry{
		{ID: "TF-0001", Title: "printer jams", Description: "paper stuck under tray", ResolvedAt: day(1)},
		{ID: "TF-0002", Title: "vpn disconnects", Description: "vpn tunnel drops every hour", ResolvedAt: day(2)},
		{ID: "TF-0003", Title: "vpn tunnel slow", Description: "", ResolvedAt: day(3)},
	}}
	index := NewKeywordIndex(corpus)

	ticket := &domain.Ticket{Title: "vpn disconnects", Description: "vpn tunnel drops every hour"}
	result, err := index.Search(context.Background(), ticket, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(result.Matches))
	}
	if result.Matches[0].ID != "TF-0002" || result.Matches[0].Similarity != 100 {
		t.Errorf("top match = %s/%d, want TF-0002/100", result.Matches[0].ID, result.Matches[0].Similarity)
	}
	if result.Matches[1].ID != "TF-0003" {
		t.Errorf("second match = %s, want TF-0003", result.Matches[1].ID)
	}
	if result.Matches[2].Similarity != 0 {
		t.Errorf("unrelated entry similarity = %d, want 0", result.Matches[2].Similarity)
	}
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	t.Parallel()

	entries := make([]domain.CorpusEntry, 0, 8)
	for i := 0; i < 8; i++ {
		entries = append(entries, domain.CorpusEntry{
			ID: "TF-000" + string(rune('1'+i)), Title: "vpn issue", Description: "vpn broken", ResolvedAt: day(i + 1),
		})
	}
	index := NewKeywordIndex(&staticCorpus{entries: entries})

	result, err := index.Search(context.Background(), &domain.Ticket{Title: "vpn issue", Description: "vpn broken"}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Matches) != 3 {
		t.Errorf("len(matches) = %d, want 3", len(result.Matches))
	}
}

func TestSearch_TieBreaksOnRecency(t *testing.T) {
	t.Parallel()

	corpus := &staticCorpus{entries: []domain.CorpusEntry{
		{ID: "TF-OLD", Title: "wifi down", Description: "office wifi unreachable", ResolvedAt: day(1)},
		{ID: "TF-NEW", Title: "wifi down", Description: "office wifi unreachable", ResolvedAt: day(9)},
	}}
	index := NewKeywordIndex(corpus)

	result, err := index.Search(context.Background(), &domain.Ticket{Title: "wifi down", Description: "office wifi unreachable"}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Matches[0].ID != "TF-NEW" {
		t.Errorf("top match = %s, want TF-NEW (more recent)", result.Matches[0].ID)
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	t.Parallel()

	index := NewKeywordIndex(&staticCorpus{})
	result, err := index.Search(context.Background(), &domain.Ticket{Title: "anything", Description: "at all"}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Matches) != 0 || result.Aggregate != 0 {
		t.Errorf("got %d matches aggregate %d, want empty result", len(result.Matches), result.Aggregate)
	}
}

func TestSearch_PropagatesCorpusError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("corpus offline")
	index := NewKeywordIndex(&staticCorpus{err: wantErr})
	_, err := index.Search(context.Background(), &domain.Ticket{Title: "x", Description: "y"}, 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestSearch_BoundsAndAggregate(t *testing.T) {
	t.Parallel()

	corpus := &staticCorpus{entries: []domain.CorpusEntry{
		{ID: "A", Title: "database replication lag", Description: "replica behind primary", ResolvedAt: day(1)},
		{ID: "B", Title: "database query slow", Description: "timeouts on reports", ResolvedAt: day(2)},
	}}
	index := NewKeywordIndex(corpus)

	result, err := index.Search(context.Background(), &domain.Ticket{
		Title: "database slow", Description: "query timeouts when running reports",
	}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	sum := 0
	for _, m := range result.Matches {
		if m.Similarity < 0 || m.Similarity > 100 {
			t.Errorf("similarity %d out of [0,100]", m.Similarity)
		}
		sum += m.Similarity
	}
	if want := sum / len(result.Matches); result.Aggregate != want {
		t.Errorf("aggregate = %d, want mean %d", result.Aggregate, want)
	}
}
