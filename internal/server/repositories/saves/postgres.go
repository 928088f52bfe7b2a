package saves

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/dbx"
)

// PostgresRepository keeps documents in the game_saves JSONB column.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a PostgresRepository bound to db.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	query := `SELECT game_data FROM game_saves WHERE user_id = $1`

	var data []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return data, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, data []byte) error {
	query := `
		INSERT INTO game_saves (user_id, game_data, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			game_data = EXCLUDED.game_data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(data)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, userID string, data []byte) error {
	query := `
		INSERT INTO game_saves (user_id, game_data, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(data)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM game_saves WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
