package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/auth"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// IssuedSession is what a successful login hands back to the client.
type IssuedSession struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

var newSessionID = func() string { return uuid.NewString() }

// SessionService keeps at most one live session per user. A token is only
// accepted while its session row exists and has not expired, so issuing a
// new session or logging out revokes earlier tokens immediately.
type SessionService struct {
	repomanager repomanager.RepositoryManager
	secretKey   []byte
	ttl         time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// NewSessionService constructs a SessionService signing tokens with secretKey.
// A non-positive ttl falls back to common.DefaultSessionTTL.
func NewSessionService(m repomanager.RepositoryManager, secretKey string, ttl time.Duration, logger logging.Logger) *SessionService {
	if ttl <= 0 {
		ttl = common.DefaultSessionTTL
	}
	return &SessionService{
		repomanager: m,
		secretKey:   []byte(secretKey),
		ttl:         ttl,
		now:         time.Now,
		logger:      logger.With("module", "sessions"),
	}
}

// TTL is the lifetime of issued sessions.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue replaces every session of userID with a fresh one and returns its
// signed token.
func (s *SessionService) Issue(ctx context.Context, userID string) (*IssuedSession, error) {
	session := &models.Session{
		ID:        newSessionID(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	token, err := auth.GenerateToken(userID, session.ID, s.secretKey, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if err := repo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "session issued", "user_id", userID, "expires_at", session.ExpiresAt)

	return &IssuedSession{Token: token, SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

// Validate returns the user id behind token. Every token or session problem
// is reported as common.ErrorUnauthorized.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}

	claims, err := auth.ParseToken(token, s.secretKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	_, err = s.repomanager.Sessions(conn).FindActive(ctx, claims.SessionID, claims.Subject, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: session is not active", common.ErrorUnauthorized)
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return claims.Subject, nil
}

// Logout removes every session of userID.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if err := s.repomanager.Sessions(conn).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "session closed", "user_id", userID)
	return nil
}
