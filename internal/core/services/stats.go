package services

import (
	"context"
	"fmt"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService exposes a debug snapshot of the backing store.
type StatsService struct {
	store driven.SearchStore
}

// NewStatsService creates a new stats service.
func NewStatsService(store driven.SearchStore) *StatsService {
	return &StatsService{store: store}
}

// Stats returns the key count, a few sample keys and one random document.
func (s *StatsService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}
