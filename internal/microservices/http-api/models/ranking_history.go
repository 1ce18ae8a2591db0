package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RankingHistoryEntry is the immutable audit record of one ranking
// transition: a create, an update, or an induced demotion. RankingID is a
// reference only, deliberately without a foreign key, so history survives
// independently of the live row. Rows are appended inside the coordinator's
// transaction and never mutated or deleted.
type RankingHistoryEntry struct {
	ID                  string    `gorm:"primaryKey;type:uuid" json:"id"`
	RankingID           string    `gorm:"type:uuid;not null;index" json:"ranking_id"`
	UserID              string    `gorm:"type:uuid;not null;index" json:"user_id"`
	RestaurantID        string    `gorm:"type:uuid;not null" json:"restaurant_id"`
	DishID              string    `gorm:"type:uuid;not null;index" json:"dish_id"`
	DishType            string    `gorm:"size:120;not null" json:"dish_type"`
	PreviousRank        *int      `json:"previous_rank,omitempty"`
	NewRank             *int      `json:"new_rank,omitempty"`
	PreviousTasteStatus *string   `gorm:"size:20" json:"previous_taste_status,omitempty"`
	NewTasteStatus      *string   `gorm:"size:20" json:"new_taste_status,omitempty"`
	Notes               string    `gorm:"type:text;not null" json:"notes"`
	PhotoURLs           []string  `gorm:"serializer:json;type:jsonb;not null" json:"photo_urls"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate hook to set UUID before creating a RankingHistoryEntry
func (e *RankingHistoryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

func (RankingHistoryEntry) TableName() string {
	return "ranking_history"
}
