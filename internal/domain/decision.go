package domain

import "time"

// Category names, ordered by historical ticket volume (most common first).
// This order is the documented tie-break for equal classifier scores.
var Categories = []string{
	CategoryPasswordReset,
	CategoryAccessRequest,
	CategorySoftwareInstall,
	CategoryNetworkIssue,
	CategoryVPNProblem,
	CategoryEmailIssue,
	CategoryHardwareFailure,
	CategoryDatabaseError,
	CategorySecurityAlert,
	CategoryOther,
}

const (
	CategoryPasswordReset   = "Password Reset"
	CategoryAccessRequest   = "Access Request"
	CategorySoftwareInstall = "Software Install"
	CategoryNetworkIssue    = "Network Issue"
	CategoryVPNProblem      = "VPN Problem"
	CategoryEmailIssue      = "Email Issue"
	CategoryHardwareFailure = "Hardware Failure"
	CategoryDatabaseError   = "Database Error"
	CategorySecurityAlert   = "Security Alert"
	CategoryOther           = "Other"
)

// ClassificationResult is the classifier's category assignment.
type ClassificationResult struct {
	Category        string
	Confidence      int // 0-100
	MatchedKeywords []string
}

// SimilarTicketRef is a read-only snapshot of a corpus entry; it is never
// linked live back to the corpus.
type SimilarTicketRef struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Similarity int       `json:"similarity"` // 0-100
	Resolution string    `json:"resolution"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// SimilarityResult bundles the ranked matches with their aggregate score.
type SimilarityResult struct {
	Matches   []SimilarTicketRef
	Aggregate int // mean of match similarities, 0 when the corpus is empty
}

// SLARisk is the qualitative risk of breaching the service-level deadline.
type SLARisk string

const (
	SLARiskLow    SLARisk = "low"
	SLARiskMedium SLARisk = "medium"
	SLARiskHigh   SLARisk = "high"
)

// RiskAssessment pairs SLA risk with the Resolution Stability Index.
type RiskAssessment struct {
	SLARisk  SLARisk
	RSIScore int // 0-100
}

// FinalAction is the engine's auto-resolve-vs-escalate verdict.
type FinalAction string

const (
	ActionAutoResolve FinalAction = "auto_resolve"
	ActionEscalate    FinalAction = "escalate"
)

// DecisionRecord is produced at most once per submission. DecisionPath is the
// ordered audit narrative; insertion order is significant.
type DecisionRecord struct {
	TicketID         string
	FinalAction      FinalAction
	Category         string
	Confidence       int
	SimilarityScore  int
	SLARisk          SLARisk
	RSIScore         int
	BusinessCritical bool
	MatchedKeywords  []string
	SimilarTickets   []SimilarTicketRef
	DecisionPath     []string
	ProducedAt       time.Time
}

// AnalyticsSummary is a read-only projection over stored decision records.
type AnalyticsSummary struct {
	TotalTickets  int
	AutoResolved  int
	Escalated     int
	PendingReview int
	AvgConfidence int
	SLACompliance int // percent of decisions not assessed high risk
}
