package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/ticketd/internal/api/dto"
	"github.com/ticketdesk/ticketd/internal/auth"
	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

// AuthHandler issues tokens for configured identities.
type AuthHandler struct {
	identities auth.IdentityProvider
	tokens     *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identities auth.IdentityProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{identities: identities, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	identity, err := h.identities.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, expiresAt, err := h.tokens.GenerateToken(identity.Username, identity.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt}})
}
