package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"platehub/internal/microservices/http-api/dto"
	"platehub/internal/microservices/http-api/service"
	"platehub/internal/ranking"
)

type RankingHandler struct {
	rankingService service.RankingService
}

func NewRankingHandler(rankingService service.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// RegisterRoutes registers ranking routes on an authenticated group
func (h *RankingHandler) RegisterRoutes(router *gin.RouterGroup) {
	rankings := router.Group("/rankings")
	{
		rankings.POST("", h.Create)    // Submit a new ranking
		rankings.PUT("/:id", h.Update) // Resubmit an existing ranking
		rankings.GET("/:id", h.Get)    // Get one of the caller's rankings
		rankings.GET("", h.List)       // List the caller's rankings
	}
}

// Create submits a new ranking
// POST /api/v1/rankings
func (h *RankingHandler) Create(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.SubmitRankingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.rankingService.Submit(c.Request.Context(), req.ToSubmission(userID.(string)))
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSubmitResult(result))
}

// Update resubmits an existing ranking
// PUT /api/v1/rankings/:id
func (h *RankingHandler) Update(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rankingID := c.Param("id")
	if _, err := uuid.Parse(rankingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ranking ID"})
		return
	}

	var req dto.UpdateRankingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.rankingService.Submit(c.Request.Context(), req.ToSubmission(userID.(string), rankingID))
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSubmitResult(result))
}

// Get retrieves one of the caller's rankings
// GET /api/v1/rankings/:id
func (h *RankingHandler) Get(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	rankingID := c.Param("id")
	if _, err := uuid.Parse(rankingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ranking ID"})
		return
	}

	row, err := h.rankingService.GetRanking(c.Request.Context(), userID.(string), rankingID)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToRankingResponse(row))
}

// List retrieves the caller's rankings with pagination
// GET /api/v1/rankings?page=1&page_size=20
func (h *RankingHandler) List(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	rows, total, err := h.rankingService.ListRankings(c.Request.Context(), userID.(string), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]dto.RankingResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, *dto.FromModelToRankingResponse(&row))
	}

	c.JSON(http.StatusOK, dto.NewPaginatedRankingResponse(responses, int(total), page, pageSize))
}

// respondSubmitError maps service errors onto HTTP statuses.
func respondSubmitError(c *gin.Context, err error) {
	var validationErr *ranking.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"kind":  string(validationErr.Kind),
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ranking not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "ranking belongs to another user"})
	case errors.Is(err, service.ErrConflictExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "submission conflicted with concurrent updates, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
