package app

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/internal/models"
	"blogmodapk-backend/pkg/logger"
)

// OpenDatabase connects to Postgres with the pool sizes from cfg.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	logger.Info("Connecting to database", map[string]interface{}{"host": cfg.DBHost, "name": cfg.DBName})

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate brings the schema up to date. Postgres additionally gets the
// partial and descending indexes the listing queries rely on.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		statements := []string{
			"CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at DESC) WHERE status = 'PUBLISHED'",
			"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC, id DESC)",
			"CREATE INDEX IF NOT EXISTS idx_posts_view_count ON posts(view_count DESC, id DESC)",
			"CREATE INDEX IF NOT EXISTS idx_posts_download_count ON posts(download_count DESC, id DESC)",
			"CREATE INDEX IF NOT EXISTS idx_comments_pending ON comments(created_at DESC) WHERE status = 'PENDING'",
			"CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at)",
		}
		for _, stmt := range statements {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
	}

	logger.Info("Database migration completed", nil)
	return nil
}
