package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"platehub/internal/microservices/http-api/service"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// RegisterRoutes registers the public stats routes
func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dishes/:dish_id/stats", h.GetDishStats)
}

// GetDishStats retrieves the derived ranking rollup for one dish
// GET /api/v1/dishes/:dish_id/stats
func (h *StatsHandler) GetDishStats(c *gin.Context) {
	dishID := c.Param("dish_id")
	if _, err := uuid.Parse(dishID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dish ID"})
		return
	}

	snap, err := h.statsService.GetDishStats(c.Request.Context(), dishID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snap)
}
