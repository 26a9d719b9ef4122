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

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketCreateInput describes the ticket creation payload. A nil status
// defaults to IN_PROGRESS; a non-nil AssignedUserID must resolve to an
// existing user.
type TicketCreateInput struct {
	Title          string
	Description    string
	Status         *domain.TicketStatus
	AssignedUserID *int64
}

// TicketPatch carries merge-patch fields for update. Nil fields keep their
// stored values. Assignment is deliberately absent: ownership changes only
// through AssignTicket.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
}

var _ Resource[domain.Ticket, TicketCreateInput, TicketPatch] = (*TicketService)(nil)

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, users repository.UserRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, users: users, dispatcher: dispatcher}
}

// Create persists a new ticket. When the input carries an assigned-user id
// the user must exist, otherwise nothing is persisted.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusInProgress,
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}

	if input.AssignedUserID != nil {
		user, err := s.users.GetByID(ctx, *input.AssignedUserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"id": *input.AssignedUserID})
			}
			return nil, err
		}
		ticket.AssignedUserID = &user.ID
		ticket.AssignedUsername = &user.Username
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:          ticket.Title,
			Status:         ticket.Status,
			AssignedUserID: ticket.AssignedUserID,
		},
	})
	return ticket, nil
}

// FindByID returns the ticket or (nil, nil) when the id does not exist.
func (s *TicketService) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	return optional(ticket, err)
}

// FindAll returns every ticket.
func (s *TicketService) FindAll(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// Update merge-patches title, description and status. The assigned-user
// reference is never touched here.
func (s *TicketService) Update(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if ticket, err = required(ticket, err, "ticket", id); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if patch.Title != nil {
		ticket.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		ticket.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		EntityID: ticket.ID,
		Payload: events.TicketUpdatedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// Delete removes a ticket, failing with NOT_FOUND when the id is unknown. A
// second delete of the same id therefore errors as well.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		EntityID: id,
	})
	return nil
}

// FindByStatus returns tickets matching the status exactly.
func (s *TicketService) FindByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return s.tickets.ListByStatus(ctx, status)
}

// FindByAssignedUser returns the tickets assigned to the username. An unknown
// username and a user without tickets both yield an empty slice; the two
// conditions are deliberately not distinguished.
func (s *TicketService) FindByAssignedUser(ctx context.Context, username string) ([]domain.Ticket, error) {
	return s.tickets.ListByAssignedUsername(ctx, username)
}

// AssignTicket replaces the ticket's assigned-user reference and nothing
// else. Both sides of the link must exist.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, userID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if ticket, err = required(ticket, err, "ticket", ticketID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if user, err = required(user, err, "user", userID); err != nil {
		return nil, err
	}

	ticket.AssignedUserID = &user.ID
	ticket.AssignedUsername = &user.Username
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		EntityID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			AssignedUserID:   user.ID,
			AssignedUsername: user.Username,
		},
	})
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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
