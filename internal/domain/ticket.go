package domain

import "time"

// TicketStatus enumerates lifecycle states for triaged tickets.
type TicketStatus string

const (
	TicketStatusSubmitted     TicketStatus = "submitted"
	TicketStatusClassified    TicketStatus = "classified"
	TicketStatusAutoResolved  TicketStatus = "auto_resolved"
	TicketStatusPendingReview TicketStatus = "pending_review"
	TicketStatusEscalated     TicketStatus = "escalated"
	TicketStatusApproved      TicketStatus = "approved"
	TicketStatusModified      TicketStatus = "modified"
	TicketStatusOverridden    TicketStatus = "overridden"
)

// InReviewState reports whether a human action may be recorded against the status.
func (s TicketStatus) InReviewState() bool {
	return s == TicketStatusPendingReview || s == TicketStatusEscalated
}

// TicketPriority enumerates caller-asserted urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ValidPriority reports whether p is one of the four recognized levels.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate the triage engine decides on. BusinessCritical is
// caller-supplied and never overridden by the engine.
type Ticket struct {
	ID               string
	Title            string
	Description      string
	Department       string
	Priority         TicketPriority
	Category         string
	BusinessCritical bool
	Status           TicketStatus
	SubmittedAt      time.Time
}

// Departments lists the recognized department set, in the order the intake
// form presents them.
var Departments = []string{
	"Engineering", "Finance", "HR", "Marketing", "Operations",
	"Security", "Facilities", "Legal", "Product", "Sales",
}

// RecognizedDepartment reports whether name is in the recognized set.
func RecognizedDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}
