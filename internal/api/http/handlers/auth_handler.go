package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-engine/internal/api/dto"
	"github.com/spec-kit/triage-engine/internal/auth"
	apperrors "github.com/spec-kit/triage-engine/pkg/util/errorutil"
)

// AuthHandler exchanges the engine API key for short-lived bearer tokens.
type AuthHandler struct {
	verifier *auth.KeyVerifier
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(verifier *auth.KeyVerifier, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{verifier: verifier, tokens: tokens}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	actor := strings.TrimSpace(req.Actor)
	if req.APIKey == "" || actor == "" {
		return apperrors.NewValidationError("api_key and actor required", nil)
	}
	if err := h.verifier.Verify(req.APIKey); err != nil {
		return apperrors.NewUnauthorized("invalid api key")
	}
	token, expiresAt, err := h.tokens.GenerateToken(actor)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt}})
}
