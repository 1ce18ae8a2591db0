package dto

import (
	"time"

	"platehub/internal/microservices/http-api/models"
	"platehub/internal/microservices/http-api/service"
	"platehub/internal/ranking"
)

// SubmitRankingDTO for creating a ranking. Value and evidence fields carry
// no binding tags on purpose: the domain validator owns those checks so the
// error kinds come back in a fixed order, not as gin binding messages.
type SubmitRankingDTO struct {
	RestaurantID string   `json:"restaurant_id" binding:"required,uuid"`
	DishID       string   `json:"dish_id" binding:"required,uuid"`
	DishType     string   `json:"dish_type" binding:"required"`
	Rank         *int     `json:"rank"`
	TasteStatus  *string  `json:"taste_status"`
	Notes        string   `json:"notes"`
	PhotoURLs    []string `json:"photo_urls"`
}

// UpdateRankingDTO for resubmitting an existing ranking. The stored row's
// scope is authoritative, so no scope fields are accepted here.
type UpdateRankingDTO struct {
	Rank        *int     `json:"rank"`
	TasteStatus *string  `json:"taste_status"`
	Notes       string   `json:"notes"`
	PhotoURLs   []string `json:"photo_urls"`
}

// ToSubmission converts a create request into a domain submission.
func (d *SubmitRankingDTO) ToSubmission(userID string) ranking.Submission {
	return ranking.Submission{
		UserID:       userID,
		RestaurantID: d.RestaurantID,
		DishID:       d.DishID,
		DishType:     d.DishType,
		Rank:         d.Rank,
		TasteStatus:  toTasteStatus(d.TasteStatus),
		Notes:        d.Notes,
		PhotoURLs:    d.PhotoURLs,
	}
}

// ToSubmission converts an update request into a domain submission
// addressing rankingID.
func (d *UpdateRankingDTO) ToSubmission(userID, rankingID string) ranking.Submission {
	return ranking.Submission{
		RankingID:   rankingID,
		UserID:      userID,
		Rank:        d.Rank,
		TasteStatus: toTasteStatus(d.TasteStatus),
		Notes:       d.Notes,
		PhotoURLs:   d.PhotoURLs,
	}
}

func toTasteStatus(s *string) *ranking.TasteStatus {
	if s == nil {
		return nil
	}
	v := ranking.TasteStatus(*s)
	return &v
}

// RankingResponse for returning one ranking
type RankingResponse struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	DishID       string    `json:"dish_id"`
	DishType     string    `json:"dish_type"`
	Rank         *int      `json:"rank,omitempty"`
	TasteStatus  *string   `json:"taste_status,omitempty"`
	Notes        string    `json:"notes"`
	PhotoURLs    []string  `json:"photo_urls"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromModelToRankingResponse converts a Ranking model to RankingResponse DTO
func FromModelToRankingResponse(r *models.Ranking) *RankingResponse {
	return &RankingResponse{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		DishID:       r.DishID,
		DishType:     r.DishType,
		Rank:         r.Rank,
		TasteStatus:  r.TasteStatus,
		Notes:        r.Notes,
		PhotoURLs:    r.PhotoURLs,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// DemotionResponse describes one ranking the submission bumped out of the
// top slot, so callers can render "you just replaced X as your #1".
type DemotionResponse struct {
	RankingID    string `json:"ranking_id"`
	DishID       string `json:"dish_id"`
	PreviousRank int    `json:"previous_rank"`
	NewRank      int    `json:"new_rank"`
}

// SubmitRankingResponse for returning a committed submission
type SubmitRankingResponse struct {
	Ranking   RankingResponse        `json:"ranking"`
	Demotions []DemotionResponse     `json:"demotions"`
	Created   bool                   `json:"created"`
	Stats     *ranking.StatsSnapshot `json:"stats,omitempty"`
}

// FromSubmitResult converts a service SubmitResult to the response DTO
func FromSubmitResult(res *service.SubmitResult) *SubmitRankingResponse {
	demotions := make([]DemotionResponse, 0, len(res.Demotions))
	for _, d := range res.Demotions {
		demotions = append(demotions, DemotionResponse{
			RankingID:    d.RankingID,
			DishID:       d.DishID,
			PreviousRank: d.PreviousRank,
			NewRank:      d.NewRank,
		})
	}
	return &SubmitRankingResponse{
		Ranking:   *FromModelToRankingResponse(res.Ranking),
		Demotions: demotions,
		Created:   res.Created,
		Stats:     res.Stats,
	}
}

// PaginatedRankingResponse for returning paginated rankings
type PaginatedRankingResponse struct {
	Data       []RankingResponse `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// NewPaginatedRankingResponse creates a paginated ranking response
func NewPaginatedRankingResponse(data []RankingResponse, total, page, pageSize int) *PaginatedRankingResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedRankingResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
