package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"platehub/internal/microservices/http-api/models"
	"platehub/internal/ranking"
)

// StatsRepository derives read-side rollups from live ranking rows. Nothing
// here is persisted: every call recomputes from the rankings table.
type StatsRepository interface {
	ComputeDishStats(ctx context.Context, dishID string) (*ranking.StatsSnapshot, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) ComputeDishStats(ctx context.Context, dishID string) (*ranking.StatsSnapshot, error) {
	db := r.db.WithContext(ctx)

	snap := &ranking.StatsSnapshot{
		DishID:       dishID,
		RankCounts:   make(map[int]int64),
		StatusCounts: make(map[ranking.TasteStatus]int64),
		ComputedAt:   time.Now().UTC(),
	}

	if err := db.Model(&models.Ranking{}).
		Where("dish_id = ?", dishID).
		Count(&snap.TotalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count rankings: %w", err)
	}

	// COUNT(rank) ignores NULLs, so the mean is over ranked rows only.
	var agg struct {
		Average float64
		Ranked  int64
	}
	if err := db.Model(&models.Ranking{}).
		Select("COALESCE(AVG(rank), 0) as average, COUNT(rank) as ranked").
		Where("dish_id = ?", dishID).
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate ranks: %w", err)
	}
	snap.MeanRank = agg.Average
	snap.RankedCount = agg.Ranked

	var rankBuckets []struct {
		Rank  int
		Total int64
	}
	if err := db.Model(&models.Ranking{}).
		Select("rank, COUNT(*) as total").
		Where("dish_id = ? AND rank IS NOT NULL", dishID).
		Group("rank").
		Scan(&rankBuckets).Error; err != nil {
		return nil, fmt.Errorf("failed to bucket ranks: %w", err)
	}
	for _, b := range rankBuckets {
		snap.RankCounts[b.Rank] = b.Total
	}

	var statusBuckets []struct {
		TasteStatus string
		Total       int64
	}
	if err := db.Model(&models.Ranking{}).
		Select("taste_status, COUNT(*) as total").
		Where("dish_id = ? AND taste_status IS NOT NULL", dishID).
		Group("taste_status").
		Scan(&statusBuckets).Error; err != nil {
		return nil, fmt.Errorf("failed to bucket taste statuses: %w", err)
	}
	for _, b := range statusBuckets {
		snap.StatusCounts[ranking.TasteStatus(b.TasteStatus)] = b.Total
	}

	return snap, nil
}
