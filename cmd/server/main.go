package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andriwij/planning-app/internal/config"
	"github.com/andriwij/planning-app/internal/db"
	"github.com/andriwij/planning-app/internal/logger"
	"github.com/andriwij/planning-app/internal/middleware"
	"github.com/andriwij/planning-app/internal/sheets"
	"github.com/joho/godotenv"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.App.Env)

	dbConn, err := db.Connect(cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations completed")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations completed")
	}

	if err := db.Seed(dbConn); err != nil {
		log.Error("seeding failed", "err", err)
		os.Exit(1)
	}

	// The sheets client is optional: without configuration the mirror runs
	// disabled and every sync is a logged no-op.
	var sheetsClient sheets.Client
	if cfg.Sheets.Enabled() {
		gc, err := sheets.NewGoogleClient(context.Background(), cfg.Sheets)
		if err != nil {
			log.Error("failed to initialize sheets client, mirror disabled", "err", err)
		} else {
			sheetsClient = gc
			log.Info("sheets mirror enabled", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
		}
	} else {
		log.Warn("sheets mirror not configured")
	}

	app := NewApp(dbConn, sheetsClient, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.RequestLogging(log, app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	log.Info("server stopped gracefully")
}
