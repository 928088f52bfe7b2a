package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/server/auth"
	"github.com/dmitrijs2005/mathmystery/internal/server/database"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(m repomanager.RepositoryManager) *SessionService {
	return NewSessionService(m, "k", 30*time.Minute, nopLogger())
}

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewInMemoryRepositoryManager()
	s := newSessionService(m)

	before := time.Now()
	issued, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.SessionID)
	assert.WithinDuration(t, before.Add(30*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := auth.ParseToken(issued.Token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, issued.SessionID, claims.SessionID)

	userID, err := s.Validate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestIssue_SingleSessionPerUser(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewInMemoryRepositoryManager()
	s := newSessionService(m)

	first, err := s.Issue(ctx, "u1")
	require.NoError(t, err)
	second, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	_, err = s.Validate(ctx, first.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	got, err := s.Validate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got)

	assert.Equal(t, 1, m.SessionStore().CountByUser("u1"))
}

func TestValidate_Rejections(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewInMemoryRepositoryManager()
	s := newSessionService(m)

	issued, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	forged, err := auth.GenerateToken("u1", issued.SessionID, []byte("other-key"), issued.ExpiresAt)
	require.NoError(t, err)

	unknownSession, err := auth.GenerateToken("u1", "not-a-session", []byte("k"), issued.ExpiresAt)
	require.NoError(t, err)

	wrongOwner, err := auth.GenerateToken("u2", issued.SessionID, []byte("k"), issued.ExpiresAt)
	require.NoError(t, err)

	expired, err := auth.GenerateToken("u1", issued.SessionID, []byte("k"), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":           "",
		"garbage":         "not.a.jwt",
		"forged":          forged,
		"unknown session": unknownSession,
		"wrong owner":     wrongOwner,
		"expired token":   expired,
	} {
		_, err := s.Validate(ctx, token)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, name)
	}
}

func TestValidate_ExpiredSessionRow(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewInMemoryRepositoryManager()
	s := newSessionService(m)

	issued, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	// the JWT is still valid; only the session row has expired
	s.now = func() time.Time { return issued.ExpiresAt.Add(time.Second) }

	_, err = s.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewInMemoryRepositoryManager()
	s := newSessionService(m)

	issued, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, "u1"))
	require.NoError(t, s.Logout(ctx, "u1"))

	_, err = s.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestSessions_StorageFailures(t *testing.T) {
	ctx := context.Background()
	m := newFailingManager()
	s := newSessionService(m)

	issued, err := s.Issue(ctx, "u1")
	require.NoError(t, err)

	m.sessions = brokenSessions{}

	_, err = s.Issue(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, err = s.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	assert.ErrorIs(t, s.Logout(ctx, "u1"), common.ErrorInternal)

	m.connErr = common.ErrPoolClosed
	_, err = s.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestIssue_PostgresTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	pool := database.NewPool("sqlmock", 1, 10, database.WithOpener(func(string) (*sql.DB, error) { return db, nil }))
	m := repomanager.NewPostgresRepositoryManager(pool)
	s := newSessionService(m)

	orig := newSessionID
	newSessionID = func() string { return "s-new" }
	defer func() { newSessionID = orig }()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+session\s+WHERE\s+user_id`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+session.*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE`).WithArgs("s-new", "u1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	issued, err := s.Issue(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "s-new", issued.SessionID)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE\s+FROM\s+session\s+WHERE\s+user_id`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+session`).WithArgs("s-new", "u1", sqlmock.AnyArg()).WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err = s.Issue(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorInternal)

	assert.NoError(t, mock.ExpectationsWereMet())
}
