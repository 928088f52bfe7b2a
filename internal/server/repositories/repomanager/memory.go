package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/saves"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps all data in process memory. The DBTX
// arguments are ignored; WithTx serializes transactional blocks.
type InMemoryRepositoryManager struct {
	txMu sync.Mutex

	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
	saves    *saves.MemoryRepository
}

// NewInMemoryRepositoryManager returns an empty InMemoryRepositoryManager.
func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
		saves:    saves.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository       { return m.users }
func (m *InMemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository { return m.sessions }
func (m *InMemoryRepositoryManager) Saves(dbx.DBTX) saves.Repository       { return m.saves }

// SessionStore exposes the concrete session repository for inspection.
func (m *InMemoryRepositoryManager) SessionStore() *sessions.MemoryRepository { return m.sessions }

func (m *InMemoryRepositoryManager) Conn(context.Context) (dbx.DBTX, error) {
	return nil, nil
}

// WithTx runs fn while holding the manager-wide lock. Nothing is rolled back
// when fn fails: atomicity of multi-step blocks relies on every memory
// repository write being infallible. A memory repository that can fail
// part-way needs real undo support here first.
func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Close() error                        { return nil }
