package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ranking is one user's live assessment of a dish type at a restaurant.
// (user_id, restaurant_id, dish_type) is the competitive scope of the
// one-best rule; the partial unique index idx_rankings_one_best (created in
// database.Migrate) guarantees at most one rank=1 row per scope. Exactly one
// of Rank and TasteStatus is set, backed by the chk_rankings_value check.
type Ranking struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index:idx_rankings_scope,priority:1" json:"user_id"`
	RestaurantID string    `gorm:"type:uuid;not null;index:idx_rankings_scope,priority:2" json:"restaurant_id"`
	DishID       string    `gorm:"type:uuid;not null;index" json:"dish_id"`
	DishType     string    `gorm:"size:120;not null;index:idx_rankings_scope,priority:3" json:"dish_type"`
	Rank         *int      `gorm:"check:chk_rankings_rank_range,rank IS NULL OR (rank >= 1 AND rank <= 5)" json:"rank,omitempty"`
	TasteStatus  *string   `gorm:"size:20;check:chk_rankings_value,(rank IS NULL) <> (taste_status IS NULL)" json:"taste_status,omitempty"`
	Notes        string    `gorm:"type:text;not null" json:"notes"`
	PhotoURLs    []string  `gorm:"serializer:json;type:jsonb;not null" json:"photo_urls"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a Ranking
func (r *Ranking) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (Ranking) TableName() string {
	return "rankings"
}
