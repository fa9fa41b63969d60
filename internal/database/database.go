package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"foodgram/internal/api/models"
	"foodgram/internal/config"
)

// Open connects to the configured database and tunes the connection pool.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	logLevel := gormlogger.Silent
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		// close the handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("connected to the database", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// Migrate creates or updates every table, index and constraint.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	filled, err := backfillIngredientSearch(db)
	if err != nil {
		return fmt.Errorf("failed to backfill ingredient search names: %w", err)
	}
	if filled > 0 {
		log.Info("ingredient search names backfilled", zap.Int("rows", filled))
	}
	log.Info("database migrations applied successfully")
	return nil
}

// backfillIngredientSearch fills search_name for rows created before the
// column existed.
func backfillIngredientSearch(db *gorm.DB) (int, error) {
	var pending []models.Ingredient
	filled := 0
	err := db.Where("search_name = ''").FindInBatches(&pending, 500, func(tx *gorm.DB, _ int) error {
		for _, ing := range pending {
			if err := tx.Model(&models.Ingredient{}).
				Where("id = ?", ing.ID).
				Update("search_name", strings.ToLower(ing.Name)).Error; err != nil {
				return err
			}
			filled++
		}
		return nil
	}).Error
	return filled, err
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
