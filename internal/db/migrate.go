package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file
	// source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/transitrack/transitrack/internal/config"
	"github.com/transitrack/transitrack/internal/models"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. With MIGRATIONS enabled and a
// postgres database it runs the SQL files under ./migrations via
// golang-migrate; otherwise it falls back to GORM AutoMigrate (dev
// convenience, and the only path sqlite supports).
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
		if err := runSQLMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		return nil
	}
	return AutoMigrate(db)
}

// AutoMigrate creates/updates tables for all application models.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []any{
		&models.User{},
		&models.Profile{},
		&models.Route{},
		&models.Schedule{},
		&models.Comment{},
		&models.Notification{},
	}
	for _, m := range modelsToMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(url string) error {
	m, err := migrate.New("file://migrations", url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
