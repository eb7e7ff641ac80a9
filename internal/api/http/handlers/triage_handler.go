package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-engine/internal/api/dto"
	"github.com/spec-kit/triage-engine/internal/auth"
	"github.com/spec-kit/triage-engine/internal/domain"
	"github.com/spec-kit/triage-engine/internal/service"
	apperrors "github.com/spec-kit/triage-engine/pkg/util/errorutil"
)

// TriageHandler exposes the ticket triage endpoints.
type TriageHandler struct {
	service *service.TriageService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{service: triageService}
}

// SubmitTicket POST /api/v1/tickets.
func (h *TriageHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	record, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		Department:       req.Department,
		Priority:         req.Priority,
		BusinessCritical: req.BusinessCritical,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": decisionResponse(record)})
}

// GetDecision GET /api/v1/tickets/:id/decision.
func (h *TriageHandler) GetDecision(c *fiber.Ctx) error {
	record, err := h.service.GetDecision(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": decisionResponse(record)})
}

// RecordAction POST /api/v1/tickets/:id/actions.
func (h *TriageHandler) RecordAction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Actor == "" {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.HumanActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticketID := c.Params("id")
	status, err := h.service.RecordHumanAction(c.UserContext(), ticketID, req.Action, principal.Actor, req.Details)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HumanActionResponse{
		TicketID: ticketID,
		Action:   req.Action,
		Status:   status,
	}})
}

// GetAuditLog GET /api/v1/tickets/:id/audit.
func (h *TriageHandler) GetAuditLog(c *fiber.Ctx) error {
	entries, err := h.service.AuditLog(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			Action:    entry.Action,
			Actor:     entry.Actor,
			Timestamp: entry.Timestamp,
			Details:   entry.Details,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func decisionResponse(record *domain.DecisionRecord) dto.DecisionResponse {
	similar := make([]dto.SimilarTicketResponse, 0, len(record.SimilarTickets))
	for _, ref := range record.SimilarTickets {
		similar = append(similar, dto.SimilarTicketResponse{
			ID:         ref.ID,
			Title:      ref.Title,
			Similarity: ref.Similarity,
			Resolution: ref.Resolution,
			ResolvedAt: ref.ResolvedAt,
		})
	}
	keywords := record.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return dto.DecisionResponse{
		TicketID:         record.TicketID,
		FinalAction:      record.FinalAction,
		Category:         record.Category,
		Confidence:       record.Confidence,
		SimilarityScore:  record.SimilarityScore,
		SLARisk:          record.SLARisk,
		RSIScore:         record.RSIScore,
		BusinessCritical: record.BusinessCritical,
		MatchedKeywords:  keywords,
		SimilarTickets:   similar,
		DecisionPath:     record.DecisionPath,
		ProducedAt:       record.ProducedAt,
	}
}
