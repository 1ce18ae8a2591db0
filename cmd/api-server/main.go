package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"platehub/database"
	"platehub/internal/config"
	"platehub/internal/events"
	"platehub/internal/microservices/http-api/handler"
	"platehub/internal/microservices/http-api/middleware"
	"platehub/internal/microservices/http-api/repository"
	"platehub/internal/microservices/http-api/service"
	"platehub/pkg/metrics"
)

func main() {
	// Load config (fallback to env/default)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis stats cache (optional; nil client degrades to recompute-always)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisAddr := cfg.RedisURL
		redisAddr = strings.TrimPrefix(redisAddr, "redis://")
		redisAddr = strings.TrimPrefix(redisAddr, "rediss://")
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		logger.Info("stats_cache_enabled", "redis_addr", redisAddr)
	} else {
		logger.Info("stats_cache_disabled")
	}

	// NATS event sinks (optional; noop when unconfigured)
	var notifier events.Notifier = events.NewNoopNotifier()
	if cfg.NATSURL != "" {
		natsNotifier, err := events.NewNATSNotifier(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsNotifier.Close()
		notifier = natsNotifier
		logger.Info("event_sinks_enabled", "nats_url", cfg.NATSURL)
	} else {
		logger.Info("event_sinks_disabled")
	}

	// Repositories
	rankingStore := repository.NewRankingStore(db)
	statsRepo := repository.NewStatsRepository(db)
	statsCache := repository.NewStatsCache(redisClient, cfg.StatsCacheTTL, logger)

	// Services
	statsService := service.NewStatsService(statsRepo, statsCache)
	rankingService := service.NewRankingService(rankingStore, statsService, statsCache, notifier, logger)

	// Handlers
	rankingHandler := handler.NewRankingHandler(rankingService)
	statsHandler := handler.NewStatsHandler(statsService)
	healthHandler := handler.NewHealthHandler(db)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	})

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	statsHandler.RegisterRoutes(api)

	rateLimiter := middleware.NewRateLimiter(cfg.SubmitRatePerSecond, cfg.SubmitRateBurst)
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authed.Use(rateLimiter.Middleware())
	rankingHandler.RegisterRoutes(authed)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_api_server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown_failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("server_stopped_gracefully")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// corsMiddleware allows the configured browser origins to call the API.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
