package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/repository"
)

// RegistryStats summarizes the global registry.
type RegistryStats struct {
	Address     domain.Address
	Initialized bool
	CreatedAt   *time.Time
	Entries     int64
}

// RegistryService manages the global identity registry.
type RegistryService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRegistryService constructs the service.
func NewRegistryService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *RegistryService {
	return &RegistryService{store: store, dispatcher: dispatcher, logger: nopIfNil(logger)}
}

// Initialize creates the registry once. Later calls leave existing entries
// untouched and report created=false.
func (s *RegistryService) Initialize(ctx context.Context, actor Actor) (*domain.Registry, bool, error) {
	if !actor.IsAdmin() {
		return nil, false, fmt.Errorf("%w: registry initialization requires admin", domain.ErrForbidden)
	}
	reg, created, err := s.store.Registry().Initialize(ctx)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("registry initialize", zap.String("address", reg.Address.String()), zap.Bool("created", created))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventRegistryInitialized,
		Subject: reg.Address.String(),
		Actor:   actor.event(),
		Payload: events.RegistryInitializedPayload{Created: created},
	})
	return reg, created, nil
}

// Stats reports whether the registry exists and how many entries it holds.
func (s *RegistryService) Stats(ctx context.Context) (*RegistryStats, error) {
	registry := s.store.Registry()
	stats := &RegistryStats{Address: registry.Address()}

	reg, err := registry.Get(ctx)
	if errors.Is(err, domain.ErrRegistryNotInitialized) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	stats.Initialized = true
	stats.CreatedAt = &reg.CreatedAt

	count, err := registry.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Entries = count
	return stats, nil
}

// ListEntries pages through the registry in insertion order.
func (s *RegistryService) ListEntries(ctx context.Context, limit, offset int) ([]domain.RegistryEntry, error) {
	if limit > 200 {
		limit = 200
	}
	return s.store.Registry().List(ctx, limit, offset)
}
