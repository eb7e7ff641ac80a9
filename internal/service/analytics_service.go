package service

import (
	"context"

	"github.com/spec-kit/triage-engine/internal/domain"
	"github.com/spec-kit/triage-engine/internal/repository"
	apperrors "github.com/spec-kit/triage-engine/pkg/util/errorutil"
)

// AnalyticsService computes read-only projections over decision records.
type AnalyticsService struct {
	decisions repository.DecisionRepository
	tickets   repository.TicketRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(decisions repository.DecisionRepository, tickets repository.TicketRepository) *AnalyticsService {
	return &AnalyticsService{decisions: decisions, tickets: tickets}
}

// Summary aggregates all decisions produced so far. Percentages are integer
// rounded; an empty store yields all zeros.
func (s *AnalyticsService) Summary(ctx context.Context) (domain.AnalyticsSummary, error) {
	records, err := s.decisions.List(ctx)
	if err != nil {
		return domain.AnalyticsSummary{}, apperrors.NewInternalError(err)
	}

	summary := domain.AnalyticsSummary{TotalTickets: len(records)}
	confidenceSum := 0
	withinSLA := 0
	for _, record := range records {
		switch record.FinalAction {
		case domain.ActionAutoResolve:
			summary.AutoResolved++
		case domain.ActionEscalate:
			summary.Escalated++
		}
		confidenceSum += record.Confidence
		if record.SLARisk != domain.SLARiskHigh {
			withinSLA++
		}
	}
	if len(records) > 0 {
		summary.AvgConfidence = (confidenceSum + len(records)/2) / len(records)
		summary.SLACompliance = (withinSLA*100 + len(records)/2) / len(records)
	}

	pending, err := s.tickets.CountByStatus(ctx, domain.TicketStatusPendingReview)
	if err != nil {
		return domain.AnalyticsSummary{}, apperrors.NewInternalError(err)
	}
	summary.PendingReview = pending

	return summary, nil
}
