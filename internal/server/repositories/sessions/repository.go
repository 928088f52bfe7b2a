// Package sessions declares the server-side session repository contract.
// A session row is what makes a signed token usable: tokens whose row is
// gone or expired are rejected.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// Repository stores session rows.
type Repository interface {
	// Create inserts a new session row.
	Create(ctx context.Context, s *models.Session) error

	// DeleteByUser removes every session of userID. Removing nothing is not
	// an error.
	DeleteByUser(ctx context.Context, userID string) error

	// FindActive returns the session with the given id and owner whose expiry
	// is after now, or common.ErrorNotFound.
	FindActive(ctx context.Context, sessionID, userID string, now time.Time) (*models.Session, error)
}
