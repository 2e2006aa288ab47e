// Package viewsession keeps history view sessions between requests.
package viewsession

import (
	"context"
	"errors"

	"smartstore-backend/internal/history"
)

var ErrNotFound = errors.New("viewsession: session not found or expired")

// Store holds sessions by id. Get returns a copy; changes are only kept
// after Save.
type Store interface {
	Get(ctx context.Context, id string) (*history.Session, error)
	Save(ctx context.Context, s *history.Session) error
	Delete(ctx context.Context, id string) error
}
