package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"platehub/internal/ranking"
)

// MockStatsService mocks the StatsService interface
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetDishStats(ctx context.Context, dishID string) (*ranking.StatsSnapshot, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ranking.StatsSnapshot), args.Error(1)
}

func setupStatsRouter(svc *MockStatsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewStatsHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetDishStats_Success(t *testing.T) {
	snap := &ranking.StatsSnapshot{
		DishID:      testDishID,
		TotalCount:  4,
		RankedCount: 3,
		MeanRank:    2.0,
		RankCounts:  map[int]int64{1: 1, 2: 1, 3: 1},
		StatusCounts: map[ranking.TasteStatus]int64{
			ranking.TasteDissatisfied: 1,
		},
	}
	mockService := new(MockStatsService)
	mockService.On("GetDishStats", mock.Anything, testDishID).Return(snap, nil)

	router := setupStatsRouter(mockService)
	req, _ := http.NewRequest("GET", "/api/v1/dishes/"+testDishID+"/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ranking.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(4), response.TotalCount)
	assert.Equal(t, 2.0, response.MeanRank)
}

func TestGetDishStats_InvalidID(t *testing.T) {
	mockService := new(MockStatsService)
	router := setupStatsRouter(mockService)

	req, _ := http.NewRequest("GET", "/api/v1/dishes/not-a-uuid/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetDishStats", mock.Anything, mock.Anything)
}

func TestGetDishStats_ServiceFailure(t *testing.T) {
	mockService := new(MockStatsService)
	mockService.On("GetDishStats", mock.Anything, testDishID).Return(nil, assert.AnError)

	router := setupStatsRouter(mockService)
	req, _ := http.NewRequest("GET", "/api/v1/dishes/"+testDishID+"/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
