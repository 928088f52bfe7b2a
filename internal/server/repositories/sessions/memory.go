package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// MemoryRepository keeps sessions in a map keyed by session id.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]models.Session
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]models.Session)}
}

// Create stores s as the only session of s.UserID, like the unique
// session.user_id index does in PostgreSQL.
func (r *MemoryRepository) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, old := range r.rows {
		if old.UserID == s.UserID {
			delete(r.rows, id)
		}
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.rows {
		if s.UserID == userID {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *MemoryRepository) FindActive(ctx context.Context, sessionID, userID string, now time.Time) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[sessionID]
	if !ok || s.UserID != userID || !s.ExpiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

// CountByUser reports how many rows userID has.
func (r *MemoryRepository) CountByUser(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.rows {
		if s.UserID == userID {
			n++
		}
	}
	return n
}
