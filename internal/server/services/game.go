package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/game"
	"github.com/dmitrijs2005/mathmystery/internal/server/models"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
)

// GameService is the per-user game-state store.
type GameService struct {
	repomanager repomanager.RepositoryManager
	seedNPCs    []string
	logger      logging.Logger
}

// NewGameService constructs a GameService; seedNPCs populate freshly created states.
func NewGameService(m repomanager.RepositoryManager, seedNPCs []string, logger logging.Logger) *GameService {
	return &GameService{
		repomanager: m,
		seedNPCs:    append([]string(nil), seedNPCs...),
		logger:      logger.With("module", "game"),
	}
}

// GetOrCreate returns the stored state, persisting and returning the default
// state on first access.
func (s *GameService) GetOrCreate(ctx context.Context, userID string) (*models.GameState, error) {
	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	repo := s.repomanager.Saves(conn)

	data, err := repo.Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		initial, serr := game.Serialize(models.NewGameState(s.seedNPCs))
		if serr != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorInternal, serr)
		}
		if err := repo.InsertIfAbsent(ctx, userID, initial); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		s.logger.Debug(ctx, "default game state created", "user_id", userID)

		// re-read: a concurrent first access may have inserted first
		data, err = repo.Get(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	state, err := game.Deserialize(data)
	if err != nil {
		s.logger.Error(ctx, "stored game state is corrupt", "user_id", userID, "error", err)
		return nil, err
	}
	return state, nil
}

// Upsert replaces the stored state. There is no merge and no versioning.
func (s *GameService) Upsert(ctx context.Context, userID string, state *models.GameState) error {
	data, err := game.Serialize(state)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	conn, err := s.repomanager.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if err := s.repomanager.Saves(conn).Upsert(ctx, userID, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return nil
}

// SaveState stores a full state sent by the client.
func (s *GameService) SaveState(ctx context.Context, userID string, state *models.GameState) error {
	return s.Upsert(ctx, userID, state)
}

// UpdateState applies one event to the stored state.
//
// This is a read-modify-write without a version check: when two updates
// for the same user race, the last write wins and the other is lost.
func (s *GameService) UpdateState(ctx context.Context, userID string, ev models.UpdateEvent) error {
	if err := game.ValidateEvent(ev); err != nil {
		return err
	}

	current, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	if !game.HasTransform(ev.Type) {
		s.logger.Debug(ctx, "update event has no transform", "user_id", userID, "type", ev.Type)
		return nil
	}

	next, err := game.Apply(current, ev)
	if err != nil {
		return err
	}
	return s.Upsert(ctx, userID, next)
}

// SyncState returns the authoritative state for the client.
func (s *GameService) SyncState(ctx context.Context, userID string) (*models.GameState, error) {
	return s.GetOrCreate(ctx, userID)
}
