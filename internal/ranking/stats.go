package ranking

import "time"

// StatsSnapshot is the derived read-side rollup for one dish. It is never
// persisted as source of truth; it is recomputed from live rankings on
// demand and may be memoized by an external cache.
type StatsSnapshot struct {
	DishID       string                `json:"dish_id"`
	TotalCount   int64                 `json:"total_count"`
	RankedCount  int64                 `json:"ranked_count"`
	MeanRank     float64               `json:"mean_rank"`
	RankCounts   map[int]int64         `json:"rank_counts"`
	StatusCounts map[TasteStatus]int64 `json:"status_counts"`
	ComputedAt   time.Time             `json:"computed_at"`
}
