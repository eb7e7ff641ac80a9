package repository

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/triage-engine/internal/domain"
)

func TestMemoryTicketRepository_UpsertPreservesStatus(t *testing.T) {
	t.Parallel()

	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	submitted := time.Date(2024, 2, 15, 9, 23, 0, 0, time.UTC)

	ticket := &domain.Ticket{ID: "TF-1001", Title: "first", Status: domain.TicketStatusSubmitted, SubmittedAt: submitted}
	if err := repo.Upsert(ctx, ticket); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repo.UpdateStatus(ctx, "TF-1001", domain.TicketStatusClassified); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	// a resubmission may refresh fields but never rewind the state machine
	retry := &domain.Ticket{ID: "TF-1001", Title: "second", Status: domain.TicketStatusSubmitted, SubmittedAt: time.Now()}
	if err := repo.Upsert(ctx, retry); err != nil {
		t.Fatalf("Upsert() retry error = %v", err)
	}

	got, found, err := repo.GetByID(ctx, "TF-1001")
	if err != nil || !found {
		t.Fatalf("GetByID() = %v, %v", found, err)
	}
	if got.Status != domain.TicketStatusClassified {
		t.Errorf("status = %s, want %s", got.Status, domain.TicketStatusClassified)
	}
	if !got.SubmittedAt.Equal(submitted) {
		t.Errorf("submittedAt = %v, want original %v", got.SubmittedAt, submitted)
	}
	if got.Title != "second" {
		t.Errorf("title = %q, want refreshed %q", got.Title, "second")
	}
}

func TestMemoryTicketRepository_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	_ = repo.Upsert(ctx, &domain.Ticket{ID: "TF-1", Title: "original"})

	got, _, _ := repo.GetByID(ctx, "TF-1")
	got.Title = "mutated"

	again, _, _ := repo.GetByID(ctx, "TF-1")
	if again.Title != "original" {
		t.Errorf("stored title = %q, want %q", again.Title, "original")
	}
}

func TestMemoryTicketRepository_UpdateStatusUnknown(t *testing.T) {
	t.Parallel()

	repo := NewMemoryTicketRepository()
	if err := repo.UpdateStatus(context.Background(), "TF-MISSING", domain.TicketStatusClassified); err == nil {
		t.Error("UpdateStatus() on missing ticket: error = nil, want error")
	}
}

func TestMemoryTicketRepository_CountByStatus(t *testing.T) {
	t.Parallel()

	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	_ = repo.Upsert(ctx, &domain.Ticket{ID: "a", Status: domain.TicketStatusPendingReview})
	_ = repo.Upsert(ctx, &domain.Ticket{ID: "b", Status: domain.TicketStatusPendingReview})
	_ = repo.Upsert(ctx, &domain.Ticket{ID: "c", Status: domain.TicketStatusAutoResolved})

	got, err := repo.CountByStatus(ctx, domain.TicketStatusPendingReview)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestMemoryCorpusRepository_AppendDeduplicates(t *testing.T) {
	t.Parallel()

	repo := NewMemoryCorpusRepository()
	ctx := context.Background()

	entry := &domain.CorpusEntry{ID: "TF-0021", Title: "first", Resolution: "done"}
	_ = repo.Append(ctx, entry)
	_ = repo.Append(ctx, &domain.CorpusEntry{ID: "TF-0021", Title: "duplicate"})
	_ = repo.Append(ctx, &domain.CorpusEntry{ID: "TF-0045", Title: "second"})

	entries, err := repo.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Title != "first" {
		t.Errorf("first entry title = %q, want original kept", entries[0].Title)
	}
}

func TestMemoryDecisionRepository_CreateOncePerTicket(t *testing.T) {
	t.Parallel()

	repo := NewMemoryDecisionRepository()
	ctx := context.Background()

	first := &domain.DecisionRecord{TicketID: "TF-1001", FinalAction: domain.ActionAutoResolve, Confidence: 94}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, &domain.DecisionRecord{TicketID: "TF-1001", FinalAction: domain.ActionEscalate}); err != nil {
		t.Fatalf("Create() duplicate error = %v", err)
	}

	got, found, err := repo.GetByTicket(ctx, "TF-1001")
	if err != nil || !found {
		t.Fatalf("GetByTicket() = %v, %v", found, err)
	}
	if got.FinalAction != domain.ActionAutoResolve {
		t.Errorf("finalAction = %s, want first write preserved", got.FinalAction)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(records) = %d, want 1", len(all))
	}
}

func TestMemoryAuditLogRepository_InsertionOrder(t *testing.T) {
	t.Parallel()

	repo := NewMemoryAuditLogRepository()
	ctx := context.Background()
	base := time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)

	for i, action := range []domain.AuditAction{domain.AuditActionEscalated, domain.AuditActionApproved} {
		err := repo.Append(ctx, &domain.AuditLogEntry{
			ID:        string(action),
			TicketID:  "TF-1001",
			Action:    action,
			Actor:     "engine",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := repo.ListByTicket(ctx, "TF-1001")
	if err != nil {
		t.Fatalf("ListByTicket() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Action != domain.AuditActionEscalated || entries[1].Action != domain.AuditActionApproved {
		t.Errorf("order = [%s %s], want insertion order", entries[0].Action, entries[1].Action)
	}
	if !entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Error("timestamps not monotonically increasing")
	}
}
