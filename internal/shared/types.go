package shared

import "time"

// shared types across the application
// 1st: ranking event payload published to the analytics/search sinks
// 2nd: add more shared types as needed

// Ranking event types carried in RankingEvent.Type.
const (
	EventRankingCreated = "ranking.created"
	EventRankingUpdated = "ranking.updated"
	EventRankingDemoted = "ranking.demoted"
)

// RankingEvent is the fire-and-forget notification emitted after a committed
// ranking transition. Consumers (analytics pipeline, search indexer) read it
// from NATS; a lost event never affects the committed write.
type RankingEvent struct {
	Type         string    `json:"type"`
	RankingID    string    `json:"ranking_id"`
	UserID       string    `json:"user_id"`
	RestaurantID string    `json:"restaurant_id"`
	DishID       string    `json:"dish_id"`
	DishType     string    `json:"dish_type"`
	Rank         *int      `json:"rank,omitempty"`
	TasteStatus  *string   `json:"taste_status,omitempty"`
	PreviousRank *int      `json:"previous_rank,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
