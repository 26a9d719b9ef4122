package dto

import (
	"time"

	"github.com/ticketdesk/ticketd/internal/domain"
)

// CreateTicketRequest payload for POST /api/tickets. Status defaults to
// IN_PROGRESS when omitted.
type CreateTicketRequest struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Status         *domain.TicketStatus `json:"status"`
	AssignedUserID *int64               `json:"assigned_user_id"`
}

// UpdateTicketRequest payload for PUT /api/tickets/:id. Merge-patch: absent
// fields keep their stored values. Assignment has no field here on purpose.
type UpdateTicketRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status"`
}

// TicketResponse is the transfer representation of a ticket.
type TicketResponse struct {
	ID               int64               `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Status           domain.TicketStatus `json:"status"`
	AssignedUserID   *int64              `json:"assigned_user_id,omitempty"`
	AssignedUsername *string             `json:"assigned_username,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TicketToResponse converts a domain ticket to its transfer form.
func TicketToResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Status:           ticket.Status,
		AssignedUserID:   ticket.AssignedUserID,
		AssignedUsername: ticket.AssignedUsername,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}

// TicketsToResponse converts a slice of tickets, never returning nil so the
// boundary serializes an empty JSON array rather than null.
func TicketsToResponse(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketToResponse(&tickets[i]))
	}
	return items
}
