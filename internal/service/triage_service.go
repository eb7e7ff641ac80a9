package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-engine/internal/classify"
	"github.com/spec-kit/triage-engine/internal/config"
	"github.com/spec-kit/triage-engine/internal/domain"
	"github.com/spec-kit/triage-engine/internal/events"
	"github.com/spec-kit/triage-engine/internal/persistence"
	"github.com/spec-kit/triage-engine/internal/policy"
	"github.com/spec-kit/triage-engine/internal/repository"
	"github.com/spec-kit/triage-engine/internal/risk"
	"github.com/spec-kit/triage-engine/internal/similarity"
	apperrors "github.com/spec-kit/triage-engine/pkg/util/errorutil"
)

// TriageService orchestrates classification, similarity search, risk
// assessment, the decision policy and the audit trail for each submission.
type TriageService struct {
	tickets    repository.TicketRepository
	corpus     repository.CorpusRepository
	decisions  repository.DecisionRepository
	audit      repository.AuditLogRepository
	classifier classify.Classifier
	index      similarity.Index
	assessor   *risk.Assessor
	policy     policy.Policy
	cache      *persistence.DecisionCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.EngineConfig

	// ticketLocks serializes submit/action processing per ticket id so audit
	// entries for one ticket are strictly ordered and retries are idempotent.
	ticketLocks sync.Map
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	TicketRepo   repository.TicketRepository
	CorpusRepo   repository.CorpusRepository
	DecisionRepo repository.DecisionRepository
	AuditRepo    repository.AuditLogRepository
	Classifier   classify.Classifier
	Index        similarity.Index
	Assessor     *risk.Assessor
	Policy       policy.Policy
	Cache        *persistence.DecisionCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// SubmitInput describes a ticket submission. ID is optional; the engine
// assigns one when absent.
type SubmitInput struct {
	ID               string
	Title            string
	Description      string
	Department       string
	Priority         domain.TicketPriority
	BusinessCritical bool
}

// NewTriageService constructs the service.
func NewTriageService(cfg config.EngineConfig, deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{
		tickets:    deps.TicketRepo,
		corpus:     deps.CorpusRepo,
		decisions:  deps.DecisionRepo,
		audit:      deps.AuditRepo,
		classifier: deps.Classifier,
		index:      deps.Index,
		assessor:   deps.Assessor,
		policy:     deps.Policy,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Submit runs the full triage pipeline for one ticket and returns its
// decision record. Retries with the same ticket id return the already
// produced record without re-deciding or re-auditing.
func (s *TriageService) Submit(ctx context.Context, input SubmitInput) (*domain.DecisionRecord, error) {
	ticket, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	unlock := s.lockTicket(ticket.ID)
	defer unlock()

	if record, ok := s.cache.Get(ctx, ticket.ID); ok {
		return record, nil
	}
	if record, ok, err := s.decisions.GetByTicket(ctx, ticket.ID); err != nil {
		return nil, apperrors.NewInternalError(err)
	} else if ok {
		s.cache.Set(ctx, record)
		return record, nil
	}

	if err := s.tickets.Upsert(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	classification, simResult, degraded := s.analyze(ctx, ticket)
	ticket.Category = classification.Category
	if err := s.tickets.Upsert(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClassified); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	assessment := s.assessor.Assess(ticket, simResult)
	record := s.policy.Decide(policy.Input{
		TicketID:         ticket.ID,
		Classification:   classification,
		Similarity:       simResult,
		Risk:             assessment,
		BusinessCritical: ticket.BusinessCritical,
		Degraded:         degraded,
	})
	record.ProducedAt = time.Now().UTC()

	// The audit entry must be durable before the caller sees a result. An
	// undecided-but-unaudited ticket beats an audited-but-lost decision, so
	// the decision record is only stored after the append succeeds.
	entry := s.decisionAuditEntry(&record)
	if err := s.appendAuditWithRetry(ctx, entry); err != nil {
		return nil, apperrors.NewServiceUnavailable("audit log write failed; resubmit the ticket", err)
	}
	if err := s.decisions.Create(ctx, &record); err != nil {
		return nil, apperrors.NewServiceUnavailable("decision store write failed; resubmit the ticket", err)
	}
	s.cache.Set(ctx, &record)

	newStatus := s.statusFor(&record)
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if record.FinalAction == domain.ActionAutoResolve {
		s.appendToCorpus(ctx, ticket, autoResolution(&record))
	}
	s.publishDecision(ctx, &record, degraded, newStatus)

	return &record, nil
}

// GetDecision returns the last decision record for the ticket.
func (s *TriageService) GetDecision(ctx context.Context, ticketID string) (*domain.DecisionRecord, error) {
	if record, ok := s.cache.Get(ctx, ticketID); ok {
		return record, nil
	}
	record, ok, err := s.decisions.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("decision", map[string]any{"ticket_id": ticketID})
	}
	s.cache.Set(ctx, record)
	return record, nil
}

// RecordHumanAction appends an audit entry for a reviewer decision and moves
// the ticket to its terminal status. Fails with InvalidTransition unless the
// ticket is awaiting review.
func (s *TriageService) RecordHumanAction(ctx context.Context, ticketID string, action domain.HumanAction, actor, details string) (domain.TicketStatus, error) {
	newStatus, ok := action.StatusFor()
	if !ok {
		return "", apperrors.NewValidationError("unknown action", map[string]any{"action": string(action)})
	}
	if strings.TrimSpace(actor) == "" {
		return "", apperrors.NewValidationError("actor required", nil)
	}

	unlock := s.lockTicket(ticketID)
	defer unlock()

	ticket, found, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !found {
		return "", apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if !ticket.Status.InReviewState() {
		return "", apperrors.NewInvalidTransition("ticket is not awaiting review", map[string]any{
			"ticket_id": ticketID,
			"status":    string(ticket.Status),
		})
	}

	if details == "" {
		details = fmt.Sprintf("Reviewer %s action: %s", actor, action)
	}
	entry := &domain.AuditLogEntry{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		Action:    action.AuditActionFor(),
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
	if err := s.appendAuditWithRetry(ctx, entry); err != nil {
		return "", apperrors.NewServiceUnavailable("audit log write failed; retry the action", err)
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, newStatus); err != nil {
		return "", apperrors.NewInternalError(err)
	}

	// Approved and modified outcomes are stable resolutions worth learning
	// from; an override rejected the engine's reasoning, so it is not fed
	// back into the corpus.
	if action == domain.HumanActionApprove || action == domain.HumanActionModify {
		ticket.Status = newStatus
		s.appendToCorpus(ctx, ticket, details)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventHumanActionRecorded,
		TicketID: ticketID,
		Actor:    actor,
		Payload: events.HumanActionRecordedPayload{
			Action:    action,
			NewStatus: newStatus,
		},
	})
	return newStatus, nil
}

// AuditLog returns the ticket's audit entries in timestamp order.
func (s *TriageService) AuditLog(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	_, found, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !found {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	entries, err := s.audit.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (s *TriageService) validate(input SubmitInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.RecognizedDepartment(input.Department) {
		return nil, apperrors.NewValidationError("unrecognized department", map[string]any{
			"department": input.Department,
		})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{
			"priority": string(input.Priority),
		})
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = generateTicketID()
	}
	return &domain.Ticket{
		ID:               id,
		Title:            title,
		Description:      description,
		Department:       input.Department,
		Priority:         priority,
		BusinessCritical: input.BusinessCritical,
		Status:           domain.TicketStatusSubmitted,
		SubmittedAt:      time.Now().UTC(),
	}, nil
}

// analyze runs classification and similarity search in parallel against the
// same corpus snapshot, bounded by the analysis latency budget. On timeout or
// store failure it substitutes fail-safe defaults (confidence 0, similarity 0)
// that bias the decision toward escalation.
func (s *TriageService) analyze(ctx context.Context, ticket *domain.Ticket) (domain.ClassificationResult, domain.SimilarityResult, bool) {
	actx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout())
	defer cancel()

	type classifyOut struct {
		result domain.ClassificationResult
		err    error
	}
	type searchOut struct {
		result domain.SimilarityResult
		err    error
	}
	classifyCh := make(chan classifyOut, 1)
	searchCh := make(chan searchOut, 1)

	go func() {
		result, err := s.classifier.Classify(actx, ticket.Title, ticket.Description)
		classifyCh <- classifyOut{result: result, err: err}
	}()
	go func() {
		result, err := s.index.Search(actx, ticket, s.cfg.TopK)
		searchCh <- searchOut{result: result, err: err}
	}()

	degraded := false
	classification := domain.ClassificationResult{Category: domain.CategoryOther}
	select {
	case out := <-classifyCh:
		if out.err != nil {
			s.logger.Warn("classification degraded", zap.String("ticket_id", ticket.ID), zap.Error(out.err))
			degraded = true
		} else {
			classification = out.result
		}
	case <-actx.Done():
		s.logger.Warn("classification timed out", zap.String("ticket_id", ticket.ID))
		degraded = true
	}

	simResult := domain.SimilarityResult{}
	select {
	case out := <-searchCh:
		if out.err != nil {
			s.logger.Warn("similarity search degraded", zap.String("ticket_id", ticket.ID), zap.Error(out.err))
			degraded = true
		} else {
			simResult = out.result
		}
	default:
		// prefer a result that raced the deadline over discarding it
		select {
		case out := <-searchCh:
			if out.err != nil {
				degraded = true
			} else {
				simResult = out.result
			}
		case <-actx.Done():
			s.logger.Warn("similarity search timed out", zap.String("ticket_id", ticket.ID))
			degraded = true
		}
	}

	return classification, simResult, degraded
}

func (s *TriageService) appendAuditWithRetry(ctx context.Context, entry *domain.AuditLogEntry) error {
	retries := s.cfg.AuditMaxRetries
	if retries <= 0 {
		retries = 3
	}
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = s.audit.Append(ctx, entry); err == nil {
			return nil
		}
		s.logger.Warn("audit append failed",
			zap.String("ticket_id", entry.TicketID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return err
}

func (s *TriageService) statusFor(record *domain.DecisionRecord) domain.TicketStatus {
	switch {
	case record.FinalAction == domain.ActionAutoResolve:
		return domain.TicketStatusAutoResolved
	case record.BusinessCritical:
		return domain.TicketStatusEscalated
	default:
		return domain.TicketStatusPendingReview
	}
}

func (s *TriageService) decisionAuditEntry(record *domain.DecisionRecord) *domain.AuditLogEntry {
	action := domain.AuditActionEscalated
	details := fmt.Sprintf("Confidence %d%%, similarity %d%%, SLA risk %s triggered escalation.",
		record.Confidence, record.SimilarityScore, record.SLARisk)
	if record.BusinessCritical {
		details = fmt.Sprintf("Business critical flag + confidence %d%% triggered escalation.", record.Confidence)
	}
	if record.FinalAction == domain.ActionAutoResolve {
		action = domain.AuditActionAutoResolved
		details = fmt.Sprintf("Confidence: %d%%. Resolution applied automatically from matched pattern.", record.Confidence)
	}
	return &domain.AuditLogEntry{
		ID:        uuid.NewString(),
		TicketID:  record.TicketID,
		Action:    action,
		Actor:     domain.ActorEngine,
		Timestamp: record.ProducedAt,
		Details:   details,
	}
}

func (s *TriageService) appendToCorpus(ctx context.Context, ticket *domain.Ticket, resolution string) {
	entry := &domain.CorpusEntry{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Department:  ticket.Department,
		Priority:    ticket.Priority,
		Category:    ticket.Category,
		Resolution:  resolution,
		ResolvedAt:  time.Now().UTC(),
	}
	if err := s.corpus.Append(ctx, entry); err != nil {
		// the decision already stands; a missed corpus append only costs
		// future similarity signal
		s.logger.Warn("corpus append failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TriageService) publishDecision(ctx context.Context, record *domain.DecisionRecord, degraded bool, newStatus domain.TicketStatus) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventDecisionProduced,
		TicketID: record.TicketID,
		Actor:    domain.ActorEngine,
		Payload: events.DecisionProducedPayload{
			FinalAction:     record.FinalAction,
			Category:        record.Category,
			Confidence:      record.Confidence,
			SimilarityScore: record.SimilarityScore,
			SLARisk:         record.SLARisk,
			RSIScore:        record.RSIScore,
			Degraded:        degraded,
		},
	})
	if record.FinalAction == domain.ActionEscalate {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: record.TicketID,
			Actor:    domain.ActorEngine,
			Payload: events.TicketEscalatedPayload{
				BusinessCritical: record.BusinessCritical,
				NewStatus:        newStatus,
			},
		})
	}
}

func (s *TriageService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TriageService) lockTicket(id string) func() {
	val, _ := s.ticketLocks.LoadOrStore(id, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func autoResolution(record *domain.DecisionRecord) string {
	if len(record.SimilarTickets) > 0 {
		top := record.SimilarTickets[0]
		return fmt.Sprintf("Applied known resolution from %s: %s", top.ID, top.Resolution)
	}
	return "Resolved automatically from matched category playbook."
}

func generateTicketID() string {
	return "TF-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
