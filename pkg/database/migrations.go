package database

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded PostgreSQL migrations.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info("Checking for pending migrations...")
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		log.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Migrations completed successfully")
	return nil
}

// Migrate picks the schema strategy for the driver: goose for PostgreSQL,
// AutoMigrate for SQLite or when forced.
func Migrate(db *gorm.DB, driver string, forceAuto bool, log *zap.Logger) error {
	if driver == "postgres" && !forceAuto {
		return RunMigrations(db, log)
	}
	return AutoMigrate(db)
}
