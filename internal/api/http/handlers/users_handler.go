package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/ticketd/internal/api/dto"
	"github.com/ticketdesk/ticketd/internal/service"
	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

// UsersHandler manages user endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// ListUsers GET /api/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersToResponse(users)})
}

// GetUser GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// GetUserTickets GET /api/users/:id/tickets.
func (h *UsersHandler) GetUserTickets(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.service.GetUserTickets(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsToResponse(tickets)})
}

// CreateUser POST /api/users. Open to unauthenticated callers.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" {
		return apperrors.NewValidationError("username must not be blank", nil)
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	user, err := h.service.Create(c.Context(), service.UserCreateInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// UpdateUser PUT /api/users/:id. Merge-patch on username and email.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return apperrors.NewValidationError("username must not be blank", nil)
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return err
		}
	}

	user, err := h.service.Update(c.Context(), id, service.UserPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserToResponse(user)})
}

// DeleteUser DELETE /api/users/:id. Owned tickets are removed in the same
// transaction.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email must not be blank", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("email must be valid", map[string]any{"email": email})
	}
	return nil
}
