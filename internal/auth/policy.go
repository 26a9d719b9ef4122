package auth

import "github.com/ticketdesk/ticketd/internal/domain"

// Ticket access decisions. These are pure functions of the caller's role and
// username and the ticket's assigned username; the HTTP layer consults them
// before returning or mutating a ticket. Ticket creation and assignment are
// not gated at all.

// CanViewTicket reports whether the caller may read the ticket. Admins see
// everything; users see only tickets assigned to their own username.
func CanViewTicket(role domain.Role, username string, assignedUsername *string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return assignedUsername != nil && *assignedUsername == username
}

// CanModifyTicket reports whether the caller may update the ticket. The rule
// is identical to viewing.
func CanModifyTicket(role domain.Role, username string, assignedUsername *string) bool {
	return CanViewTicket(role, username, assignedUsername)
}

// CanDeleteTicket reports whether the caller may delete tickets. Only admins
// may, regardless of assignment.
func CanDeleteTicket(role domain.Role) bool {
	return role == domain.RoleAdmin
}
