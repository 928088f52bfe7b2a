// Package database owns the process-wide PostgreSQL connection pool.
//
// The pool is opened lazily on first use, at most once even under
// concurrent first calls, and is closed exactly once by the app's
// shutdown path.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Opener opens a database handle for a DSN.
type Opener func(dsn string) (*sql.DB, error)

func openPgx(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithOpener replaces the pgx driver, typically with sqlmock in tests.
func WithOpener(o Opener) PoolOption {
	return func(p *Pool) { p.open = o }
}

// Pool lazily opens a *sql.DB bounded to MinConns idle and MaxConns open
// connections.
type Pool struct {
	dsn      string
	minConns int
	maxConns int
	open     Opener

	mu     sync.Mutex
	db     atomic.Pointer[sql.DB]
	closed atomic.Bool
}

// NewPool returns an unopened pool. Non-positive bounds fall back to 1 and 10.
func NewPool(dsn string, minConns, maxConns int, opts ...PoolOption) *Pool {
	if minConns <= 0 {
		minConns = 1
	}
	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns > maxConns {
		minConns = maxConns
	}
	p := &Pool{dsn: dsn, minConns: minConns, maxConns: maxConns, open: openPgx}
	for _, o := range opts {
		o(p)
	}
	return p
}

// DB returns the shared handle, opening it on first call.
func (p *Pool) DB(ctx context.Context) (*sql.DB, error) {
	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}
	if db := p.db.Load(); db != nil {
		return db, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return nil, common.ErrPoolClosed
	}
	if db := p.db.Load(); db != nil {
		return db, nil
	}

	db, err := p.open(p.dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(p.maxConns)
	db.SetMaxIdleConns(p.minConns)

	p.db.Store(db)
	return db, nil
}

// Ping opens the pool if needed and checks that the database answers.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.DB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases every connection. Later calls to DB fail with
// common.ErrPoolClosed; closing twice is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Swap(true) {
		return nil
	}
	if db := p.db.Swap(nil); db != nil {
		return db.Close()
	}
	return nil
}
