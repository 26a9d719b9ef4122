package events

import (
	"time"

	"github.com/ticketdesk/ticketd/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventUserDeleted    EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  int64       `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title          string              `json:"title"`
	Status         domain.TicketStatus `json:"status"`
	AssignedUserID *int64              `json:"assigned_user_id,omitempty"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedUserID   int64  `json:"assigned_user_id"`
	AssignedUsername string `json:"assigned_username"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Username        string `json:"username"`
	CascadedTickets int    `json:"cascaded_tickets"`
}
