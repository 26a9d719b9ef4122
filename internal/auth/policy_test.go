package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticketdesk/ticketd/internal/domain"
)

func strptr(s string) *string { return &s }

func TestCanViewTicket(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		username string
		assigned *string
		want     bool
	}{
		{"admin sees any ticket", domain.RoleAdmin, "admin", strptr("alice"), true},
		{"admin sees unassigned ticket", domain.RoleAdmin, "admin", nil, true},
		{"user sees own ticket", domain.RoleUser, "bob", strptr("bob"), true},
		{"user denied another user's ticket", domain.RoleUser, "bob", strptr("alice"), false},
		{"user denied unassigned ticket", domain.RoleUser, "bob", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewTicket(tt.role, tt.username, tt.assigned))
		})
	}
}

func TestCanModifyTicketMatchesViewRule(t *testing.T) {
	assert.True(t, CanModifyTicket(domain.RoleUser, "bob", strptr("bob")))
	assert.False(t, CanModifyTicket(domain.RoleUser, "bob", strptr("alice")))
	assert.True(t, CanModifyTicket(domain.RoleAdmin, "admin", strptr("alice")))
}

func TestCanDeleteTicketIsAdminOnly(t *testing.T) {
	assert.True(t, CanDeleteTicket(domain.RoleAdmin))
	// Users may not delete even their own tickets.
	assert.False(t, CanDeleteTicket(domain.RoleUser))
}
