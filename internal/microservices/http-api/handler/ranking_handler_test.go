package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"platehub/internal/microservices/http-api/dto"
	"platehub/internal/microservices/http-api/models"
	"platehub/internal/microservices/http-api/service"
	"platehub/internal/ranking"
)

// MockRankingService mocks the RankingService interface
type MockRankingService struct {
	mock.Mock
}

func (m *MockRankingService) Submit(ctx context.Context, sub ranking.Submission) (*service.SubmitResult, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockRankingService) GetRanking(ctx context.Context, userID, rankingID string) (*models.Ranking, error) {
	args := m.Called(ctx, userID, rankingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ranking), args.Error(1)
}

func (m *MockRankingService) ListRankings(ctx context.Context, userID string, page, pageSize int) ([]models.Ranking, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Ranking), args.Get(1).(int64), args.Error(2)
}

const (
	testUserID       = "11111111-1111-4111-8111-111111111111"
	testRestaurantID = "22222222-2222-4222-8222-222222222222"
	testDishID       = "33333333-3333-4333-8333-333333333333"
	testRankingID    = "44444444-4444-4444-8444-444444444444"
)

func setupRouter(svc service.RankingService, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authed {
		r.Use(func(c *gin.Context) {
			c.Set("userID", testUserID)
			c.Next()
		})
	}
	NewRankingHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func intPtr(v int) *int {
	return &v
}

func submitBody() []byte {
	body, _ := json.Marshal(dto.SubmitRankingDTO{
		RestaurantID: testRestaurantID,
		DishID:       testDishID,
		DishType:     "laksa",
		Rank:         intPtr(1),
		Notes:        "broth worth a detour",
		PhotoURLs:    []string{"https://cdn.platehub.dev/p/laksa.jpg"},
	})
	return body
}

func sampleResult() *service.SubmitResult {
	return &service.SubmitResult{
		Ranking: &models.Ranking{
			ID:           testRankingID,
			UserID:       testUserID,
			RestaurantID: testRestaurantID,
			DishID:       testDishID,
			DishType:     "laksa",
			Rank:         intPtr(1),
			Notes:        "broth worth a detour",
			PhotoURLs:    []string{"https://cdn.platehub.dev/p/laksa.jpg"},
		},
		Demotions: []ranking.Demotion{
			{RankingID: "55555555-5555-4555-8555-555555555555", DishID: testDishID, PreviousRank: 1, NewRank: 2},
		},
		Created: true,
	}
}

func TestCreateRanking_Success(t *testing.T) {
	mockService := new(MockRankingService)
	mockService.On("Submit", mock.Anything, mock.AnythingOfType("ranking.Submission")).Return(sampleResult(), nil)

	router := setupRouter(mockService, true)
	req, _ := http.NewRequest("POST", "/api/v1/rankings", bytes.NewBuffer(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response dto.SubmitRankingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, testRankingID, response.Ranking.ID)
	assert.True(t, response.Created)
	require.Len(t, response.Demotions, 1)
	assert.Equal(t, 2, response.Demotions[0].NewRank)
}

func TestCreateRanking_ValidationErrorMapsTo400(t *testing.T) {
	mockService := new(MockRankingService)
	mockService.On("Submit", mock.Anything, mock.AnythingOfType("ranking.Submission")).
		Return(nil, &ranking.ValidationError{
			Kind:   ranking.MutualExclusivityViolation,
			Field:  "rank/taste_status",
			Reason: "rank and taste_status are mutually exclusive",
		})

	router := setupRouter(mockService, true)
	req, _ := http.NewRequest("POST", "/api/v1/rankings", bytes.NewBuffer(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, string(ranking.MutualExclusivityViolation), response["kind"])
}

func TestCreateRanking_Unauthenticated(t *testing.T) {
	mockService := new(MockRankingService)
	router := setupRouter(mockService, false)

	req, _ := http.NewRequest("POST", "/api/v1/rankings", bytes.NewBuffer(submitBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestUpdateRanking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"conflict exhausted", service.ErrConflictExhausted, http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockRankingService)
			mockService.On("Submit", mock.Anything, mock.AnythingOfType("ranking.Submission")).Return(nil, tt.serviceErr)

			router := setupRouter(mockService, true)
			body, _ := json.Marshal(dto.UpdateRankingDTO{
				Rank:      intPtr(1),
				Notes:     "still the one",
				PhotoURLs: []string{"https://cdn.platehub.dev/p/again.jpg"},
			})
			req, _ := http.NewRequest("PUT", "/api/v1/rankings/"+testRankingID, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestUpdateRanking_InvalidID(t *testing.T) {
	mockService := new(MockRankingService)
	router := setupRouter(mockService, true)

	body, _ := json.Marshal(dto.UpdateRankingDTO{Rank: intPtr(2)})
	req, _ := http.NewRequest("PUT", "/api/v1/rankings/not-a-uuid", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestGetRanking_Success(t *testing.T) {
	row := sampleResult().Ranking
	mockService := new(MockRankingService)
	mockService.On("GetRanking", mock.Anything, testUserID, testRankingID).Return(row, nil)

	router := setupRouter(mockService, true)
	req, _ := http.NewRequest("GET", "/api/v1/rankings/"+testRankingID, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.RankingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, testRankingID, response.ID)
}

func TestListRankings_Paginated(t *testing.T) {
	rows := []models.Ranking{*sampleResult().Ranking}
	mockService := new(MockRankingService)
	mockService.On("ListRankings", mock.Anything, testUserID, 2, 10).Return(rows, int64(11), nil)

	router := setupRouter(mockService, true)
	req, _ := http.NewRequest("GET", "/api/v1/rankings?page=2&page_size=10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.PaginatedRankingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Page)
	assert.Equal(t, 11, response.Total)
	assert.Equal(t, 2, response.TotalPages)
	require.Len(t, response.Data, 1)
}
