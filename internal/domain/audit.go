package domain

import "time"

// AuditAction captures what happened in an audit trail entry.
type AuditAction string

const (
	AuditActionAutoResolved AuditAction = "AUTO_RESOLVED"
	AuditActionEscalated    AuditAction = "ESCALATED"
	AuditActionApproved     AuditAction = "APPROVED"
	AuditActionModified     AuditAction = "MODIFIED"
	AuditActionOverridden   AuditAction = "OVERRIDDEN"
)

// ActorEngine is the actor recorded for entries the engine writes itself.
const ActorEngine = "engine"

// AuditLogEntry is append-only and immutable once written. For a fixed
// ticket, entries are totally ordered by timestamp and never reordered.
type AuditLogEntry struct {
	ID        string
	TicketID  string
	Action    AuditAction
	Actor     string
	Timestamp time.Time
	Details   string
}

// HumanAction is a post-decision action taken by a reviewer.
type HumanAction string

const (
	HumanActionApprove  HumanAction = "approve"
	HumanActionModify   HumanAction = "modify"
	HumanActionOverride HumanAction = "override"
)

// StatusFor maps the human action to the terminal ticket status it produces.
func (a HumanAction) StatusFor() (TicketStatus, bool) {
	switch a {
	case HumanActionApprove:
		return TicketStatusApproved, true
	case HumanActionModify:
		return TicketStatusModified, true
	case HumanActionOverride:
		return TicketStatusOverridden, true
	}
	return "", false
}

// AuditActionFor maps the human action to its audit trail action.
func (a HumanAction) AuditActionFor() AuditAction {
	switch a {
	case HumanActionModify:
		return AuditActionModified
	case HumanActionOverride:
		return AuditActionOverridden
	default:
		return AuditActionApproved
	}
}
