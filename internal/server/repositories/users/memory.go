package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// MemoryRepository keeps users in a map. It is used by the memory storage
// mode and by service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, common.ErrAlreadyExists
	}

	u := &models.User{ID: newID(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.byEmail[email] = u

	out := *u
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, u := range r.byEmail {
		if u.ID == userID {
			delete(r.byEmail, email)
		}
	}
	return nil
}
