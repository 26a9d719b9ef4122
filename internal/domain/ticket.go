package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusDone       TicketStatus = "DONE"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// Valid reports whether the status is one of the enumerated values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusInProgress, TicketStatusDone, TicketStatusCancelled:
		return true
	}
	return false
}

// Ticket is the aggregate for work items. AssignedUserID is a non-owning
// reference; nil means unassigned. AssignedUsername is a read-side projection
// filled in by the repository join and is never written back.
type Ticket struct {
	ID               int64
	Title            string
	Description      string
	Status           TicketStatus
	AssignedUserID   *int64
	AssignedUsername *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
