package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

// Resource is the capability set shared by the ticket and user services:
// create, read, list, merge-patch update, delete. C is the creation input
// type and P the patch type. FindByID reports a miss as (nil, nil); Update
// and Delete report it as a NOT_FOUND error.
type Resource[R any, C any, P any] interface {
	Create(ctx context.Context, input C) (*R, error)
	FindByID(ctx context.Context, id int64) (*R, error)
	FindAll(ctx context.Context) ([]R, error)
	Update(ctx context.Context, id int64, patch P) (*R, error)
	Delete(ctx context.Context, id int64) error
}

// required converts a repository miss into the NOT_FOUND failure contract.
// Both concrete services funnel their lookup-then-act operations through it.
func required[R any](value *R, err error, entity string, id int64) (*R, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(entity, map[string]any{"id": id})
		}
		return nil, err
	}
	return value, nil
}

// optional converts a repository miss into an absent result, for lookups
// whose contract is "no error on miss".
func optional[R any](value *R, err error) (*R, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}
