package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"platehub/internal/ranking"
)

// StatsCache memoizes stats snapshots between coordinator commits. Cache
// failures are never surfaced: a miss or a broken Redis only costs a
// recompute.
type StatsCache interface {
	Get(ctx context.Context, dishID string) (*ranking.StatsSnapshot, bool)
	Set(ctx context.Context, snap *ranking.StatsSnapshot)
	// Invalidate drops the snapshots for every dish touched by a commit.
	Invalidate(ctx context.Context, dishIDs ...string)
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsCache wraps a Redis client. A nil client yields a no-op cache so
// the stats service degrades to recompute-always when Redis is not
// configured.
func NewStatsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) StatsCache {
	return &redisStatsCache{client: client, ttl: ttl, logger: logger}
}

func statsKey(dishID string) string {
	return fmt.Sprintf("stats:dish:%s", dishID)
}

func (c *redisStatsCache) Get(ctx context.Context, dishID string) (*ranking.StatsSnapshot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, statsKey(dishID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stats_cache_read_failed",
				"dish_id", dishID,
				"error", err.Error(),
			)
		}
		return nil, false
	}

	var snap ranking.StatsSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		c.logger.Warn("stats_cache_decode_failed",
			"dish_id", dishID,
			"error", err.Error(),
		)
		return nil, false
	}
	return &snap, true
}

func (c *redisStatsCache) Set(ctx context.Context, snap *ranking.StatsSnapshot) {
	if c == nil || c.client == nil || snap == nil {
		return
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("stats_cache_encode_failed",
			"dish_id", snap.DishID,
			"error", err.Error(),
		)
		return
	}

	if err := c.client.Set(ctx, statsKey(snap.DishID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("stats_cache_write_failed",
			"dish_id", snap.DishID,
			"error", err.Error(),
		)
	}
}

func (c *redisStatsCache) Invalidate(ctx context.Context, dishIDs ...string) {
	if c == nil || c.client == nil || len(dishIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(dishIDs))
	for _, id := range dishIDs {
		keys = append(keys, statsKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("stats_cache_invalidation_failed",
			"keys", len(keys),
			"error", err.Error(),
		)
	}
}
