package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/server/database"
	"github.com/dmitrijs2005/mathmystery/internal/server/migrations"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/saves"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over a
// lazily opened database.Pool.
type PostgresRepositoryManager struct {
	pool *database.Pool

	// savesOverride, when set, replaces the game_saves table as the
	// game-state backend (object storage).
	savesOverride saves.Repository
}

// Option configures a PostgresRepositoryManager.
type Option func(*PostgresRepositoryManager)

// WithSavesRepository stores game saves in r instead of PostgreSQL.
func WithSavesRepository(r saves.Repository) Option {
	return func(m *PostgresRepositoryManager) { m.savesOverride = r }
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(pool *database.Pool, opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{pool: pool}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// Saves returns the game-save repository. With an object-storage backend
// configured db is ignored and the writes are not part of the transaction.
func (m *PostgresRepositoryManager) Saves(db dbx.DBTX) saves.Repository {
	if m.savesOverride != nil {
		return m.savesOverride
	}
	return saves.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Conn(ctx context.Context) (dbx.DBTX, error) {
	return m.pool.DB(ctx)
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	db, err := m.pool.DB(ctx)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	db, err := m.pool.DB(ctx)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect error: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.pool.Close()
}
