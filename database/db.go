package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"platehub/internal/config"
	"platehub/internal/microservices/http-api/models"
)

// ConnectDB opens the PostgreSQL connection pool used by the ranking store.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("database_connected")
	return db, nil
}

// Migrate creates the ranking tables and the index that enforces the
// one-best invariant at the store level: at most one rank=1 row per
// (user_id, restaurant_id, dish_type) scope. AutoMigrate cannot express a
// partial unique index, so it is created explicitly after the tables.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(&models.Ranking{}, &models.RankingHistoryEntry{}); err != nil {
		return fmt.Errorf("failed to migrate ranking schema: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_rankings_one_best
		 ON rankings (user_id, restaurant_id, dish_type)
		 WHERE rank = 1`,
	).Error; err != nil {
		return fmt.Errorf("failed to create one-best index: %w", err)
	}

	logger.Info("database_migrated")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
