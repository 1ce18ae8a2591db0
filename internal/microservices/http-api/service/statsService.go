package service

import (
	"context"
	"fmt"

	"platehub/internal/microservices/http-api/repository"
	"platehub/internal/ranking"
	"platehub/pkg/metrics"
)

// StatsService is the read-side aggregator: snapshots are recomputed from
// live ranking rows on demand, with a read-through cache in front. The
// coordinator invalidates the cache on every commit touching a dish.
type StatsService interface {
	GetDishStats(ctx context.Context, dishID string) (*ranking.StatsSnapshot, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	cache     repository.StatsCache
}

func NewStatsService(statsRepo repository.StatsRepository, cache repository.StatsCache) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		cache:     cache,
	}
}

func (s *statsService) GetDishStats(ctx context.Context, dishID string) (*ranking.StatsSnapshot, error) {
	if snap, ok := s.cache.Get(ctx, dishID); ok {
		metrics.RecordStatsCacheHit(true)
		return snap, nil
	}
	metrics.RecordStatsCacheHit(false)

	snap, err := s.statsRepo.ComputeDishStats(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dish stats: %w", err)
	}

	s.cache.Set(ctx, snap)
	return snap, nil
}
