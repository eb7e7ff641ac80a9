package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-engine/internal/domain"
	"github.com/spec-kit/triage-engine/internal/events"
	"github.com/spec-kit/triage-engine/internal/observability"
)

func TestMetricsWorker_CountsDecisions(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	StartMetricsWorker(dispatcher, metrics, zap.NewNop())

	ctx := context.Background()
	_ = dispatcher.Publish(ctx, events.Event{
		Type:     events.EventDecisionProduced,
		TicketID: "TF-1001",
		Payload:  events.DecisionProducedPayload{FinalAction: domain.ActionAutoResolve},
	})
	_ = dispatcher.Publish(ctx, events.Event{
		Type:     events.EventDecisionProduced,
		TicketID: "TF-1002",
		Payload:  events.DecisionProducedPayload{FinalAction: domain.ActionEscalate, Degraded: true},
	})

	if got := metrics.DecisionCount(domain.ActionAutoResolve); got != 1 {
		t.Errorf("auto-resolve count = %d, want 1", got)
	}
	if got := metrics.DecisionCount(domain.ActionEscalate); got != 1 {
		t.Errorf("escalate count = %d, want 1", got)
	}
}

func TestMetricsWorker_IgnoresMalformedPayloads(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	StartMetricsWorker(dispatcher, metrics, zap.NewNop())

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventDecisionProduced,
		Payload: "not a payload struct",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if got := metrics.DecisionCount(domain.ActionAutoResolve); got != 0 {
		t.Errorf("count = %d, want 0 for malformed payload", got)
	}
}
