// Package repository defines the persistence interfaces the triage engine is
// built against, with Postgres and in-memory implementations.
package repository

import (
	"context"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// TicketRepository persists tickets and their single current status.
type TicketRepository interface {
	// Upsert creates the ticket or refreshes an existing row with the same id.
	// Resubmissions after a failed audit write land here again.
	Upsert(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	CountByStatus(ctx context.Context, status domain.TicketStatus) (int, error)
}

// CorpusRepository is the append-only store of resolved tickets. Appends are
// serialized relative to each other; entries are immutable once appended.
type CorpusRepository interface {
	Append(ctx context.Context, entry *domain.CorpusEntry) error
	ListEntries(ctx context.Context) ([]domain.CorpusEntry, error)
}

// DecisionRepository stores at most one DecisionRecord per ticket.
type DecisionRepository interface {
	Create(ctx context.Context, record *domain.DecisionRecord) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.DecisionRecord, bool, error)
	List(ctx context.Context) ([]domain.DecisionRecord, error)
}

// AuditLogRepository is append-only; entries for one ticket are returned in
// timestamp order and never mutated.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error)
}
