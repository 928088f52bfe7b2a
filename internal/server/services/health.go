package services

import (
	"context"

	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
)

// Database status values reported by HealthService.
const (
	DBConnected    = "connected"
	DBDisconnected = "disconnected"
)

// HealthService reports whether the store answers.
type HealthService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewHealthService constructs a HealthService probing the store behind m.
func NewHealthService(m repomanager.RepositoryManager, logger logging.Logger) *HealthService {
	return &HealthService{repomanager: m, logger: logger.With("module", "health")}
}

// DBStatus never fails; an unreachable store is reported, not returned.
func (s *HealthService) DBStatus(ctx context.Context) string {
	if err := s.repomanager.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		return DBDisconnected
	}
	return DBConnected
}
