package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/ticketdesk/ticketd/internal/api/http"
	"github.com/ticketdesk/ticketd/internal/api/http/handlers"
	"github.com/ticketdesk/ticketd/internal/auth"
	"github.com/ticketdesk/ticketd/internal/config"
	"github.com/ticketdesk/ticketd/internal/domain"
	"github.com/ticketdesk/ticketd/internal/events"
	"github.com/ticketdesk/ticketd/internal/observability"
	"github.com/ticketdesk/ticketd/internal/persistence"
	"github.com/ticketdesk/ticketd/internal/service"
)

// testEnv wires a real fiber app with in-memory repositories behind the real
// services, middleware and routes.
type testEnv struct {
	app     *fiber.App
	users   *mockUserRepo
	tickets *mockTicketRepo
	tokens  *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users, tickets := newMockRepos()
	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(tickets, users, dispatcher)
	userService := service.NewUserService(users, tickets, dispatcher)

	tokens := auth.NewTokenManager("test-secret", 60)
	identities, err := auth.NewStaticIdentityProvider(config.AuthConfig{
		BcryptCost:       4, // keep the test fast
		AdminUsername:    "admin",
		AdminPassword:    "admin123",
		DemoUsername:     "user1",
		DemoUserPassword: "user123",
	})
	require.NoError(t, err)
	logger := zap.NewNop()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(identities, tokens),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	return &testEnv{app: app, users: users, tickets: tickets, tokens: tokens}
}

func (e *testEnv) tokenFor(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken(username, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (e *testEnv) seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedTicket(t *testing.T, title string, status domain.TicketStatus, assignee *domain.User) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{Title: title, Description: "desc of " + title, Status: status}
	if assignee != nil {
		ticket.AssignedUserID = &assignee.ID
		ticket.AssignedUsername = &assignee.Username
	}
	require.NoError(t, e.tickets.Create(context.Background(), ticket))
	return ticket
}

// In-memory repository fakes mirroring the Postgres failure modes.

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

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
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
