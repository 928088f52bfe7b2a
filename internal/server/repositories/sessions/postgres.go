package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
)

// PostgresRepository stores sessions in the session table.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a PostgresRepository bound to db.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores s as the only session of s.UserID. session.user_id is unique,
// so a concurrent login that committed first is overwritten instead of
// leaving a second live row.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {

	query :=
		`INSERT INTO session (session_id, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET session_id = EXCLUDED.session_id, expires_at = EXCLUDED.expires_at, created_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM session WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, sessionID, userID string, now time.Time) (*models.Session, error) {
	query :=
		`SELECT session_id, user_id, expires_at FROM session
		 WHERE session_id = $1 AND user_id = $2 AND expires_at > $3
		 `

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID, userID, now).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}
