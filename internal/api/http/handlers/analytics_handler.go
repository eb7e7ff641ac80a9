package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-engine/internal/api/dto"
	"github.com/spec-kit/triage-engine/internal/service"
)

// AnalyticsHandler serves decision analytics.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Summary GET /api/v1/analytics/summary.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AnalyticsSummaryResponse{
		TotalTickets:  summary.TotalTickets,
		AutoResolved:  summary.AutoResolved,
		Escalated:     summary.Escalated,
		PendingReview: summary.PendingReview,
		AvgConfidence: summary.AvgConfidence,
		SLACompliance: summary.SLACompliance,
	}})
}
