// Package saves persists serialized game states, one document per user.
// Implementations store whatever bytes they are given; encoding and
// decoding belong to the game package.
package saves

import "context"

// Repository is the storage contract of the game-state store.
type Repository interface {
	// Get returns the stored document or common.ErrorNotFound.
	Get(ctx context.Context, userID string) ([]byte, error)

	// Upsert replaces the user's document.
	Upsert(ctx context.Context, userID string, data []byte) error

	// InsertIfAbsent stores data only when the user has no document yet.
	// Losing a race against another insert is not an error.
	InsertIfAbsent(ctx context.Context, userID string, data []byte) error

	// Delete removes the user's document; a missing one is not an error.
	Delete(ctx context.Context, userID string) error
}
