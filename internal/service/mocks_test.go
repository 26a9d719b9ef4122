package service

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ticketdesk/ticketd/internal/domain"
)

// In-memory fakes for the repository interfaces. They mimic the Postgres
// behavior the services rely on: pgx.ErrNoRows on misses, unique-violation
// PgErrors on duplicate usernames/emails, and transactional cascade delete.

type mockUserRepo struct {
	users   map[int64]*domain.User
	tickets *mockTicketRepo
	nextID  int64
}

type mockTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
}

func newMockRepos() (*mockUserRepo, *mockTicketRepo) {
	tickets := &mockTicketRepo{tickets: make(map[int64]*domain.Ticket)}
	users := &mockUserRepo{users: make(map[int64]*domain.User), tickets: tickets}
	return users, tickets
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
		if existing.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
		if existing.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			result := *user
			return &result, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) DeleteCascade(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for ticketID, ticket := range m.tickets.tickets {
		if ticket.AssignedUserID != nil && *ticket.AssignedUserID == id {
			delete(m.tickets.tickets, ticketID)
		}
	}
	delete(m.users, id)
	return nil
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.nextID++
	ticket.ID = m.nextID
	stored := *ticket
	m.tickets[ticket.ID] = &stored
	return nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	m.tickets[ticket.ID] = &stored
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	result := *ticket
	return &result, nil
}

func (m *mockTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	return m.collect(func(*domain.Ticket) bool { return true }), nil
}

func (m *mockTicketRepo) ListByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return m.collect(func(t *domain.Ticket) bool { return t.Status == status }), nil
}

func (m *mockTicketRepo) ListByAssignedUsername(_ context.Context, username string) ([]domain.Ticket, error) {
	return m.collect(func(t *domain.Ticket) bool {
		return t.AssignedUsername != nil && *t.AssignedUsername == username
	}), nil
}

func (m *mockTicketRepo) ListByAssignedUserID(_ context.Context, userID int64) ([]domain.Ticket, error) {
	return m.collect(func(t *domain.Ticket) bool {
		return t.AssignedUserID != nil && *t.AssignedUserID == userID
	}), nil
}

func (m *mockTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

func (m *mockTicketRepo) collect(match func(*domain.Ticket) bool) []domain.Ticket {
	result := make([]domain.Ticket, 0, len(m.tickets))
	for _, ticket := range m.tickets {
		if match(ticket) {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
