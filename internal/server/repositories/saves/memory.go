package saves

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/mathmystery/internal/common"
)

// MemoryRepository keeps game documents in a map keyed by user id.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return bytes.Clone(d), nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, userID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[userID] = bytes.Clone(data)
	return nil
}

func (r *MemoryRepository) InsertIfAbsent(ctx context.Context, userID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[userID]; !ok {
		r.docs[userID] = bytes.Clone(data)
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.docs, userID)
	return nil
}
