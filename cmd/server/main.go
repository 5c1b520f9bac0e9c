// Package main is the entry point for the DriveSense HTTP server.
package main

import (
	"log"
	"time"

	"github.com/sebasr/drivesense/internal/alerting"
	"github.com/sebasr/drivesense/internal/behavior"
	"github.com/sebasr/drivesense/internal/config"
	"github.com/sebasr/drivesense/internal/database"
	"github.com/sebasr/drivesense/internal/repository"
	"github.com/sebasr/drivesense/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create the behavior engine
	engine := behavior.NewEngine(cfg.Thresholds())

	// Initialize database connection for score history. The engine is
	// fully in-memory, so a missing database only disables history.
	var db *database.DB
	var scoreRepo repository.ScoreRepository
	db, err = database.New(&cfg.Database)
	if err != nil {
		log.Printf("Score history disabled, database unavailable: %v", err)
		db = nil
	} else {
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		scoreRepo = repository.NewPostgresScoreRepository(db)
		log.Println("Successfully connected to database")
	}

	// Initialize the alert notifier
	var notifier alerting.Notifier
	switch cfg.Alerting.Provider {
	case "mailgun":
		notifier = alerting.NewMailgunNotifier(
			cfg.Alerting.MailgunDomain,
			cfg.Alerting.MailgunAPIKey,
			cfg.Alerting.FromAddress,
			cfg.Alerting.FromName,
			cfg.Alerting.ManagerAddress,
		)
		log.Println("Alert notifier initialized with Mailgun provider")
	case "console":
		notifier = alerting.NewConsoleNotifier()
		log.Println("Alert notifier initialized with console provider")
	default:
		log.Println("Alert notifier not configured - behavior alerts will be dropped")
	}

	// Run the inactive-vehicle eviction sweep out-of-band so it never
	// blocks ingestion.
	go func() {
		ticker := time.NewTicker(cfg.Engine.EvictionInterval)
		defer ticker.Stop()
		for range ticker.C {
			if removed := engine.EvictInactive(nil, cfg.Engine.MaxInactiveDuration); removed > 0 {
				log.Printf("Evicted %d inactive vehicle(s)", removed)
			}
		}
	}()

	// Create server dependencies
	deps := &server.Dependencies{
		Config:    cfg,
		Engine:    engine,
		ScoreRepo: scoreRepo,
		Notifier:  notifier,
		DB:        db,
	}

	// Create and start the server
	srv := server.New(deps)

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		log.Printf("Failed to start server: %v", err)
		panic(err) // Use panic instead of log.Fatalf to ensure defer runs
	}
}
