package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/auth"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// CredentialService registers, verifies and deletes email/password accounts.
type CredentialService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewCredentialService constructs a CredentialService backed by the given repository manager.
func NewCredentialService(m repomanager.RepositoryManager, logger logging.Logger) *CredentialService {
	return &CredentialService{repomanager: m, logger: logger.With("module", "credentials")}
}

// Register creates an account and returns its id. A taken email yields
// common.ErrAlreadyExists.
func (s *CredentialService) Register(ctx context.Context, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", common.ErrValidation)
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user, err := s.repomanager.Users(conn).Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

// Verify checks the credentials and returns the user id. Unknown emails and
// wrong passwords are indistinguishable: both return common.ErrorUnauthorized
// after a bcrypt comparison.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (string, error) {
	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user, err := s.repomanager.Users(conn).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrorUnauthorized
	}
	return user.ID, nil
}

// Delete verifies the credentials and then removes, in one transaction, the
// user's sessions, game save and account.
func (s *CredentialService) Delete(ctx context.Context, email, password string) error {
	userID, err := s.Verify(ctx, email, password)
	if err != nil {
		return err
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.Saves(tx).Delete(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", userID)
	return nil
}
