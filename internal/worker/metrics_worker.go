package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-engine/internal/events"
	"github.com/spec-kit/triage-engine/internal/observability"
)

// StartMetricsWorker subscribes counters to engine events. Decision events
// feed the triage counters; escalations are logged for operators.
func StartMetricsWorker(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventDecisionProduced, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.DecisionProducedPayload)
		if !ok {
			return nil
		}
		metrics.RecordDecision(payload.FinalAction, payload.Degraded)
		return nil
	})

	dispatcher.Subscribe(events.EventTicketEscalated, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.TicketEscalatedPayload)
		if !ok {
			return nil
		}
		logger.Info("ticket escalated",
			zap.String("ticket_id", event.TicketID),
			zap.Bool("business_critical", payload.BusinessCritical),
			zap.String("status", string(payload.NewStatus)),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventHumanActionRecorded, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.HumanActionRecordedPayload)
		if !ok {
			return nil
		}
		metrics.RecordHumanAction(payload.Action)
		return nil
	})
}
