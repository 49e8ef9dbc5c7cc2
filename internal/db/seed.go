package db

import (
	"errors"
	"log/slog"

	"github.com/transitrack/transitrack/internal/config"
	"github.com/transitrack/transitrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed ensures baseline data exists: the administrator account from
// ADMIN_EMAIL/ADMIN_PASSWORD, and a couple of starter routes when the routes
// table is empty. Safe to run on every start.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedRoutes(db); err != nil {
		return err
	}

	if cfg.Auth.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL not set; no administrator account will exist")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.Auth.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if cfg.Auth.AdminPassword == "" {
		slog.Warn("administrator account missing and ADMIN_PASSWORD not set; skipping seed",
			"email", cfg.Auth.AdminEmail)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{Email: cfg.Auth.AdminEmail, Password: string(hashed)}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	slog.Info("seeded administrator account", "email", cfg.Auth.AdminEmail)
	return nil
}

func seedRoutes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Route{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	freq := func(n int) *int { return &n }
	routes := []models.Route{
		{
			Name:          "Línea 1",
			Description:   "Servicio troncal por el eje central",
			StartLocation: "Centro",
			EndLocation:   "Terminal Norte",
			Schedules: []models.Schedule{
				{DayOfWeek: "Monday", StartTime: "06:00", EndTime: "22:00", FrequencyMinutes: freq(10)},
				{DayOfWeek: "Saturday", StartTime: "07:00", EndTime: "21:00", FrequencyMinutes: freq(15)},
			},
		},
		{
			Name:          "Línea 2",
			Description:   "Conexión con el aeropuerto",
			StartLocation: "Plaza Mayor",
			EndLocation:   "Aeropuerto",
			Schedules: []models.Schedule{
				{DayOfWeek: "Monday", StartTime: "05:30", EndTime: "23:00", FrequencyMinutes: freq(20)},
			},
		},
	}
	if err := db.Create(&routes).Error; err != nil {
		return err
	}
	slog.Info("seeded starter routes", "count", len(routes))
	return nil
}
