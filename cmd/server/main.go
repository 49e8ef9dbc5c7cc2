package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/joho/godotenv"
	"github.com/transitrack/transitrack/auth"
	"github.com/transitrack/transitrack/internal/config"
	"github.com/transitrack/transitrack/internal/db"
	"github.com/transitrack/transitrack/internal/logging"
	"github.com/transitrack/transitrack/internal/models"
	"github.com/transitrack/transitrack/internal/policy"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()
	logging.Setup()
	cfg := config.Load()

	dbConn, err := db.Connect(cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn, cfg); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		slog.Info("seeding completed")
		return
	}

	if err := db.Migrate(dbConn, cfg); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := db.Seed(dbConn, cfg); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	// A session whose user no longer exists (deleted account) is treated as
	// no session.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		dbConn.Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	routerCfg := policy.NewRouterConfig(dbConn, cfg)

	csrfOn := cfg.Auth.CSRFKey != ""
	var handler http.Handler = NewApp(dbConn, routerCfg, csrfOn)
	if csrfOn {
		handler = csrf.Protect(
			[]byte(cfg.Auth.CSRFKey),
			csrf.Secure(!cfg.App.Dev),
			csrf.Path("/"),
		)(handler)
	} else {
		slog.Warn("CSRF protection disabled, set CSRF_KEY to enable")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      logging.Middleware(handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	slog.Info("server stopped")
}
