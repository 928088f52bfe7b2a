// Package repomanager vends repositories bound to a connection or a
// transaction, and owns the storage-level concerns around them: opening
// connections, transactions, health pings and schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/saves"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Saves(db dbx.DBTX) saves.Repository

	// Conn returns a handle for work that needs no transaction.
	Conn(ctx context.Context) (dbx.DBTX, error)

	// WithTx runs fn atomically; repositories built from tx share it.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context) error
	Close() error
}
