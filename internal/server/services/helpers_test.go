package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/saves"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

// failingManager wraps the in-memory manager and injects storage failures.
type failingManager struct {
	*repomanager.InMemoryRepositoryManager

	connErr  error
	txErr    error
	pingErr  error
	sessions sessions.Repository
	saves    saves.Repository
	users    users.Repository
}

func newFailingManager() *failingManager {
	return &failingManager{InMemoryRepositoryManager: repomanager.NewInMemoryRepositoryManager()}
}

func (m *failingManager) Conn(ctx context.Context) (dbx.DBTX, error) {
	if m.connErr != nil {
		return nil, m.connErr
	}
	return m.InMemoryRepositoryManager.Conn(ctx)
}

func (m *failingManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return m.InMemoryRepositoryManager.WithTx(ctx, fn)
}

func (m *failingManager) Ping(ctx context.Context) error { return m.pingErr }

func (m *failingManager) Users(db dbx.DBTX) users.Repository {
	if m.users != nil {
		return m.users
	}
	return m.InMemoryRepositoryManager.Users(db)
}

func (m *failingManager) Sessions(db dbx.DBTX) sessions.Repository {
	if m.sessions != nil {
		return m.sessions
	}
	return m.InMemoryRepositoryManager.Sessions(db)
}

func (m *failingManager) Saves(db dbx.DBTX) saves.Repository {
	if m.saves != nil {
		return m.saves
	}
	return m.InMemoryRepositoryManager.Saves(db)
}

type brokenUsers struct{}

func (brokenUsers) Create(context.Context, string, string) (*models.User, error) { return nil, errBoom }
func (brokenUsers) GetByEmail(context.Context, string) (*models.User, error)     { return nil, errBoom }
func (brokenUsers) Delete(context.Context, string) error                         { return errBoom }

type brokenSessions struct{}

func (brokenSessions) Create(context.Context, *models.Session) error { return errBoom }
func (brokenSessions) DeleteByUser(context.Context, string) error    { return errBoom }
func (brokenSessions) FindActive(context.Context, string, string, time.Time) (*models.Session, error) {
	return nil, errBoom
}

// rawSaves serves a fixed stored document.
type rawSaves struct {
	*saves.MemoryRepository
	putErr error
}

func (r *rawSaves) Upsert(ctx context.Context, userID string, data []byte) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.MemoryRepository.Upsert(ctx, userID, data)
}

func nopLogger() logging.Logger { return logging.Nop() }
