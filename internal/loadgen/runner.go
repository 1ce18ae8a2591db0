package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Report tallies the outcomes of one run.
type Report struct {
	Submitted   int64
	Created     int64
	Conflicted  int64
	RateLimited int64
	Failed      int64
	Elapsed     time.Duration
}

// job is one submission to fire: a user claiming #1 in one scope.
type job struct {
	user  UserPlan
	scope Scope
	seq   int
}

type submitRequest struct {
	RestaurantID string   `json:"restaurant_id"`
	DishID       string   `json:"dish_id"`
	DishType     string   `json:"dish_type"`
	Rank         int      `json:"rank"`
	Notes        string   `json:"notes"`
	PhotoURLs    []string `json:"photo_urls"`
}

// Run fires the plan's submissions through a worker pool, pacing the whole
// pool with one shared client-side limiter. Every submission claims rank 1,
// so scopes with more than one submission exercise the demotion path under
// real contention.
func Run(ctx context.Context, cfg Config, plan *Plan, logger *slog.Logger) (*Report, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), workers)
	}

	jobs := make(chan job)
	report := &Report{}
	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				submitOne(ctx, client, cfg.BaseURL, j, report, logger)
			}
		}()
	}

	feed := func() {
		defer close(jobs)
		for _, user := range plan.Users {
			for _, scope := range user.Scopes {
				for seq := 0; seq < cfg.SubmissionsPerScope; seq++ {
					select {
					case jobs <- job{user: user, scope: scope, seq: seq}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}
	go feed()

	wg.Wait()
	report.Elapsed = time.Since(start)

	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

func submitOne(ctx context.Context, client *http.Client, baseURL string, j job, report *Report, logger *slog.Logger) {
	payload := submitRequest{
		RestaurantID: j.scope.RestaurantID,
		DishID:       j.scope.DishID,
		DishType:     j.scope.DishType,
		Rank:         1,
		Notes:        fmt.Sprintf("load run submission %d for %s", j.seq, j.scope.DishType),
		PhotoURLs:    []string{fmt.Sprintf("https://cdn.platehub.dev/load/%s-%d.jpg", j.scope.DishID, j.seq)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		atomic.AddInt64(&report.Failed, 1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/rankings", bytes.NewReader(body))
	if err != nil {
		atomic.AddInt64(&report.Failed, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.user.Token)

	atomic.AddInt64(&report.Submitted, 1)
	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&report.Failed, 1)
		if ctx.Err() == nil {
			logger.Warn("submission_request_failed", "error", err.Error())
		}
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		atomic.AddInt64(&report.Created, 1)
	case http.StatusConflict:
		atomic.AddInt64(&report.Conflicted, 1)
	case http.StatusTooManyRequests:
		atomic.AddInt64(&report.RateLimited, 1)
	default:
		atomic.AddInt64(&report.Failed, 1)
		logger.Warn("submission_rejected",
			"status", resp.StatusCode,
			"user_id", j.user.UserID,
			"dish_type", j.scope.DishType,
		)
	}
}
