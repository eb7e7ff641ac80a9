package events

import (
	"time"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDecisionProduced    EventType = "decision_produced"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventHumanActionRecorded EventType = "human_action_recorded"
)

// Event represents a domain event emitted by the engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DecisionProducedPayload payload.
type DecisionProducedPayload struct {
	FinalAction     domain.FinalAction `json:"final_action"`
	Category        string             `json:"category"`
	Confidence      int                `json:"confidence"`
	SimilarityScore int                `json:"similarity_score"`
	SLARisk         domain.SLARisk     `json:"sla_risk"`
	RSIScore        int                `json:"rsi_score"`
	Degraded        bool               `json:"degraded"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	BusinessCritical bool                `json:"business_critical"`
	NewStatus        domain.TicketStatus `json:"new_status"`
}

// HumanActionRecordedPayload payload.
type HumanActionRecordedPayload struct {
	Action    domain.HumanAction  `json:"action"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
