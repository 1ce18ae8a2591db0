package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"platehub/internal/loadgen"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadgen.Config{
		BaseURL:             getEnv("RANKGEN_BASE_URL", "http://localhost:8080"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Users:               getEnvInt("RANKGEN_USERS", 10),
		ScopesPerUser:       getEnvInt("RANKGEN_SCOPES_PER_USER", 4),
		SubmissionsPerScope: getEnvInt("RANKGEN_SUBMISSIONS_PER_SCOPE", 5),
		Workers:             getEnvInt("RANKGEN_WORKERS", 8),
		RatePerSecond:       float64(getEnvInt("RANKGEN_RATE_PER_SECOND", 0)),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required to mint submission tokens")
	}

	plan, err := loadgen.BuildPlan(cfg)
	if err != nil {
		log.Fatalf("Failed to build plan: %v", err)
	}

	// Handle shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown_signal_received")
		cancel()
	}()

	logger.Info("load_run_starting",
		"base_url", cfg.BaseURL,
		"users", cfg.Users,
		"total_submissions", plan.TotalSubmissions(cfg),
		"workers", cfg.Workers,
	)

	report, err := loadgen.Run(ctx, cfg, plan, logger)
	if err != nil {
		log.Fatalf("Load run aborted: %v", err)
	}
	logger.Info("load_run_finished",
		"submitted", report.Submitted,
		"created", report.Created,
		"conflicted", report.Conflicted,
		"rate_limited", report.RateLimited,
		"failed", report.Failed,
		"elapsed", report.Elapsed.String(),
	)

	verdict, err := loadgen.Verify(ctx, cfg, plan)
	if err != nil {
		log.Fatalf("Verification failed to run: %v", err)
	}
	if !verdict.OK() {
		for _, v := range verdict.Violations {
			logger.Error("one_best_invariant_violated",
				"user_id", v.UserID,
				"restaurant_id", v.RestaurantID,
				"dish_type", v.DishType,
				"top_count", v.TopCount,
			)
		}
		os.Exit(1)
	}
	logger.Info("one_best_invariant_verified", "scopes_checked", verdict.ScopesChecked)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
