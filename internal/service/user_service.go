package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketdesk/ticketd/internal/domain"
	"github.com/ticketdesk/ticketd/internal/events"
	"github.com/ticketdesk/ticketd/internal/repository"
	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

// UserService coordinates user workflows.
type UserService struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// UserCreateInput describes the user creation payload.
type UserCreateInput struct {
	Username string
	Email    string
}

// UserPatch carries merge-patch fields for update. Nil fields keep their
// stored values.
type UserPatch struct {
	Username *string
	Email    *string
}

var _ Resource[domain.User, UserCreateInput, UserPatch] = (*UserService)(nil)

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, tickets: tickets, dispatcher: dispatcher}
}

// Create persists a new user. Username/email uniqueness is the database's
// job; a constraint violation propagates untranslated for the boundary to
// surface as a conflict.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	user := &domain.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.TrimSpace(input.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns the user or (nil, nil) when the id does not exist.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	return optional(user, err)
}

// FindAll returns every user.
func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Update merge-patches username and email.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if user, err = required(user, err, "user", id); err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and, in the same transaction, every ticket
// assigned to them.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if user, err = required(user, err, "user", id); err != nil {
		return err
	}

	owned, err := s.tickets.ListByAssignedUserID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventUserDeleted,
		EntityID: id,
		Payload: events.UserDeletedPayload{
			Username:        user.Username,
			CascadedTickets: len(owned),
		},
	})
	return nil
}

// GetUserTickets returns the tickets assigned to the user. Unlike
// FindByAssignedUser on the ticket service, an unknown id is an error here.
func (s *UserService) GetUserTickets(ctx context.Context, id int64) ([]domain.Ticket, error) {
	user, err := s.users.GetByID(ctx, id)
	if _, err = required(user, err, "user", id); err != nil {
		return nil, err
	}
	return s.tickets.ListByAssignedUserID(ctx, id)
}

// FindByUsername returns the user or fails with NOT_FOUND. The asymmetry
// with FindByID (absent result, no error) is part of the boundary contract.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
