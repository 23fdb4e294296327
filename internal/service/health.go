package service

import (
	"context"
	"errors"
	"log/slog"

	"classlab/internal/domain"
)

// Degraded-state sentinels returned by HealthService.Check. The message text
// is the health endpoint's response body.
var (
	ErrStoreOffline    = errors.New("db offline")
	ErrUpstreamOffline = errors.New("gitlab offline")
)

// Pinger reports whether the identity store connection is alive.
// Satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthService probes the identity store and the upstream API.
type HealthService struct {
	store    Pinger
	upstream domain.Upstream
	logger   *slog.Logger
}

// NewHealthService creates a new HealthService.
func NewHealthService(store Pinger, upstream domain.Upstream, logger *slog.Logger) *HealthService {
	return &HealthService{store: store, upstream: upstream, logger: logger}
}

// Check returns nil when both dependencies respond, otherwise a sentinel
// naming which one is offline. The store is probed first.
func (s *HealthService) Check(ctx context.Context) error {
	if err := s.store.PingContext(ctx); err != nil {
		s.logger.WarnContext(ctx, "identity store unreachable", "error", err)
		return ErrStoreOffline
	}
	if err := s.upstream.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "upstream unreachable", "error", err)
		return ErrUpstreamOffline
	}
	return nil
}
