// Package users declares the credential repository contract and its
// PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// Repository stores credential rows keyed by a unique email.
type Repository interface {
	// Create inserts a new user. It fails with common.ErrAlreadyExists when
	// the email is taken, even when two callers race on the same email.
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)

	// GetByEmail returns common.ErrorNotFound when no user has this email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Delete removes the user row. Deleting a missing user is not an error.
	Delete(ctx context.Context, userID string) error
}
