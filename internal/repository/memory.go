package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// In-memory repository implementations. Suitable for dev mode (no POSTGRES_DSN)
// and tests; they return copies so callers can never mutate stored state.

// MemoryTicketRepository holds tickets in a map guarded by a RWMutex.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryTicketRepository initializes an empty in-memory ticket store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *MemoryTicketRepository) Upsert(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ticket
	if existing, ok := r.tickets[ticket.ID]; ok {
		cp.Status = existing.Status
		cp.SubmittedAt = existing.SubmittedAt
	}
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, false, nil
	}
	cp := *t
	return &cp, true, nil
}

func (r *MemoryTicketRepository) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	return nil
}

func (r *MemoryTicketRepository) CountByStatus(_ context.Context, status domain.TicketStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, t := range r.tickets {
		if t.Status == status {
			count++
		}
	}
	return count, nil
}

// MemoryCorpusRepository is an append-only slice; the mutex serializes
// appends relative to each other without blocking readers for long.
type MemoryCorpusRepository struct {
	mu      sync.RWMutex
	entries []domain.CorpusEntry
	seen    map[string]struct{}
}

// NewMemoryCorpusRepository initializes an empty in-memory corpus.
func NewMemoryCorpusRepository() *MemoryCorpusRepository {
	return &MemoryCorpusRepository{seen: make(map[string]struct{})}
}

func (r *MemoryCorpusRepository) Append(_ context.Context, entry *domain.CorpusEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[entry.ID]; dup {
		return nil
	}
	r.seen[entry.ID] = struct{}{}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryCorpusRepository) ListEntries(_ context.Context) ([]domain.CorpusEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CorpusEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// MemoryDecisionRepository keeps at most one record per ticket.
type MemoryDecisionRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.DecisionRecord
	order   []string
}

// NewMemoryDecisionRepository initializes an empty in-memory decision store.
func NewMemoryDecisionRepository() *MemoryDecisionRepository {
	return &MemoryDecisionRepository{records: make(map[string]*domain.DecisionRecord)}
}

func (r *MemoryDecisionRepository) Create(_ context.Context, record *domain.DecisionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.records[record.TicketID]; dup {
		return nil
	}
	cp := *record
	r.records[record.TicketID] = &cp
	r.order = append(r.order, record.TicketID)
	return nil
}

func (r *MemoryDecisionRepository) GetByTicket(_ context.Context, ticketID string) (*domain.DecisionRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[ticketID]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (r *MemoryDecisionRepository) List(_ context.Context) ([]domain.DecisionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DecisionRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out, nil
}

// MemoryAuditLogRepository stores entries per ticket in insertion order,
// which is also timestamp order because appends for one ticket are serialized
// by the engine.
type MemoryAuditLogRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.AuditLogEntry
}

// NewMemoryAuditLogRepository initializes an empty in-memory audit log.
func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{entries: make(map[string][]domain.AuditLogEntry)}
}

func (r *MemoryAuditLogRepository) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.TicketID] = append(r.entries[entry.TicketID], *entry)
	return nil
}

func (r *MemoryAuditLogRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.entries[ticketID]
	out := make([]domain.AuditLogEntry, len(stored))
	copy(out, stored)
	return out, nil
}
