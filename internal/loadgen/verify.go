package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Violation is one scope that ended the run without exactly one #1.
type Violation struct {
	UserID       string
	RestaurantID string
	DishType     string
	TopCount     int
}

// Verdict is the invariant check over every scope the run touched.
type Verdict struct {
	ScopesChecked int
	Violations    []Violation
}

// OK reports whether every checked scope holds exactly one #1.
func (v *Verdict) OK() bool {
	return len(v.Violations) == 0
}

// listedRanking mirrors the fields of the list endpoint's items the
// verifier needs.
type listedRanking struct {
	RestaurantID string `json:"restaurant_id"`
	DishType     string `json:"dish_type"`
	Rank         *int   `json:"rank"`
}

type listResponse struct {
	Data       []listedRanking `json:"data"`
	TotalPages int             `json:"total_pages"`
}

// Verify reads every user's rankings back through the list endpoint and
// checks that each scope the plan contended on holds exactly one rank=1
// row. Scopes the run never managed to touch (all submissions failed) are
// reported as violations with TopCount 0.
func Verify(ctx context.Context, cfg Config, plan *Plan) (*Verdict, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	verdict := &Verdict{}

	for _, user := range plan.Users {
		rows, err := fetchAllRankings(ctx, client, cfg.BaseURL, user.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to list rankings for user %s: %w", user.UserID, err)
		}

		topCounts := countTopPerScope(rows)
		for _, scope := range user.Scopes {
			key := scopeKey(scope.RestaurantID, scope.DishType)
			verdict.ScopesChecked++
			if n := topCounts[key]; n != 1 {
				verdict.Violations = append(verdict.Violations, Violation{
					UserID:       user.UserID,
					RestaurantID: scope.RestaurantID,
					DishType:     scope.DishType,
					TopCount:     n,
				})
			}
		}
	}
	return verdict, nil
}

// countTopPerScope tallies rank=1 rows per (restaurant, dish type).
func countTopPerScope(rows []listedRanking) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		if row.Rank != nil && *row.Rank == 1 {
			counts[scopeKey(row.RestaurantID, row.DishType)]++
		}
	}
	return counts
}

func scopeKey(restaurantID, dishType string) string {
	return restaurantID + "|" + dishType
}

func fetchAllRankings(ctx context.Context, client *http.Client, baseURL, token string) ([]listedRanking, error) {
	var all []listedRanking
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/api/v1/rankings?page=%d&page_size=100", baseURL, page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("list endpoint returned status %d", resp.StatusCode)
		}

		var body listResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		all = append(all, body.Data...)
		if page >= body.TotalPages {
			break
		}
	}
	return all, nil
}
