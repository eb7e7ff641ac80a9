package dto

import (
	"time"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Department       string                `json:"department"`
	Priority         domain.TicketPriority `json:"priority"`
	BusinessCritical bool                  `json:"business_critical"`
}

// SimilarTicketResponse is a snapshot of a historical match.
type SimilarTicketResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Similarity int       `json:"similarity"`
	Resolution string    `json:"resolution"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// DecisionResponse is the engine verdict with its full reasoning trace.
type DecisionResponse struct {
	TicketID         string                  `json:"ticket_id"`
	FinalAction      domain.FinalAction      `json:"final_action"`
	Category         string                  `json:"category"`
	Confidence       int                     `json:"confidence"`
	SimilarityScore  int                     `json:"similarity_score"`
	SLARisk          domain.SLARisk          `json:"sla_risk"`
	RSIScore         int                     `json:"rsi_score"`
	BusinessCritical bool                    `json:"business_critical"`
	MatchedKeywords  []string                `json:"matched_keywords"`
	SimilarTickets   []SimilarTicketResponse `json:"similar_tickets"`
	DecisionPath     []string                `json:"decision_path"`
	ProducedAt       time.Time               `json:"produced_at"`
}

// HumanActionRequest payload.
type HumanActionRequest struct {
	Action  domain.HumanAction `json:"action"`
	Details string             `json:"details"`
}

// HumanActionResponse reports the resulting ticket status.
type HumanActionResponse struct {
	TicketID string              `json:"ticket_id"`
	Action   domain.HumanAction  `json:"action"`
	Status   domain.TicketStatus `json:"status"`
}

// AuditEntryResponse is one immutable audit trail row.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	TicketID  string             `json:"ticket_id"`
	Action    domain.AuditAction `json:"action"`
	Actor     string             `json:"actor"`
	Timestamp time.Time          `json:"timestamp"`
	Details   string             `json:"details"`
}

// AnalyticsSummaryResponse aggregates decision outcomes.
type AnalyticsSummaryResponse struct {
	TotalTickets  int `json:"total_tickets"`
	AutoResolved  int `json:"auto_resolved"`
	Escalated     int `json:"escalated"`
	PendingReview int `json:"pending_review"`
	AvgConfidence int `json:"avg_confidence"`
	SLACompliance int `json:"sla_compliance"`
}

// TokenRequest exchanges the engine API key for a bearer token.
type TokenRequest struct {
	APIKey string `json:"api_key"`
	Actor  string `json:"actor"`
}

// TokenResponse payload.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
