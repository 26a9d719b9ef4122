package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/ticketd/internal/api/dto"
	"github.com/ticketdesk/ticketd/internal/auth"
	"github.com/ticketdesk/ticketd/internal/domain"
	"github.com/ticketdesk/ticketd/internal/service"
	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

const maxDescriptionLength = 1000

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets. Admins get everything, optionally filtered by
// status; users get exactly their own tickets and the status parameter is
// ignored for them.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var (
		tickets []domain.Ticket
		err     error
	)
	if principal.Role == domain.RoleAdmin {
		if statusStr := c.Query("status"); statusStr != "" {
			status := domain.TicketStatus(statusStr)
			if !status.Valid() {
				return apperrors.NewValidationError("invalid status", map[string]any{"status": statusStr})
			}
			tickets, err = h.service.FindByStatus(c.Context(), status)
		} else {
			tickets, err = h.service.FindAll(c.Context())
		}
	} else {
		tickets, err = h.service.FindByAssignedUser(c.Context(), principal.Username)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsToResponse(tickets)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ticket, err := h.service.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !auth.CanViewTicket(principal.Role, principal.Username, ticket.AssignedUsername) {
		return apperrors.NewForbidden("you do not have access to this ticket")
	}
	return c.JSON(fiber.Map{"data": dto.TicketToResponse(ticket)})
}

// CreateTicket POST /api/tickets. Not gated.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title must not be blank", nil)
	}
	if err := validateDescription(req.Description); err != nil {
		return err
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
	}

	ticket, err := h.service.Create(c.Context(), service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketToResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id. Merge-patch on title, description and
// status; ownership is untouched.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return apperrors.NewValidationError("title must not be blank", nil)
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
	}

	existing, err := h.service.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if !auth.CanModifyTicket(principal.Role, principal.Username, existing.AssignedUsername) {
		return apperrors.NewForbidden("you do not have access to this ticket")
	}

	ticket, err := h.service.Update(c.Context(), id, service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketToResponse(ticket)})
}

// AssignTicket PUT /api/tickets/:id/assign/:userId. Not gated.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	ticket, err := h.service.AssignTicket(c.Context(), ticketID, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketToResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id. Admin only; the role check runs
// before the existence check, so non-admins get 403 even for unknown ids.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanDeleteTicket(principal.Role) {
		return apperrors.NewForbidden("only an administrator may delete tickets")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid identifier", map[string]any{param: c.Params(param)})
	}
	return id, nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return apperrors.NewValidationError("description must not be blank", nil)
	}
	if len(description) > maxDescriptionLength {
		return apperrors.NewValidationError("description too long", map[string]any{"max": maxDescriptionLength})
	}
	return nil
}
