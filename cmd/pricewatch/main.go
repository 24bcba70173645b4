package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ewhitmore/mtg-price-watch/internal/config"
	"github.com/ewhitmore/mtg-price-watch/internal/database"
	"github.com/ewhitmore/mtg-price-watch/internal/engine"
	"github.com/ewhitmore/mtg-price-watch/internal/metrics"
	"github.com/ewhitmore/mtg-price-watch/internal/services"
	"github.com/ewhitmore/mtg-price-watch/internal/store"
)

func main() {
	// .env is optional; secrets usually arrive from the scheduler's env
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runID := uuid.New().String()
	log.Printf("Starting price watch run %s", runID)

	// The archive is best-effort: a broken sqlite file must not block the
	// alerting run.
	var archive engine.Archiver
	if err := database.Initialize(cfg.ArchivePath); err != nil {
		log.Printf("Run archive unavailable: %v", err)
	} else {
		archive = services.NewArchiveService(database.GetDB())
	}

	runner := &engine.Runner{
		Cfg:       cfg,
		Snapshots: store.NewSnapshotStore(cfg.SnapshotPath),
		History:   store.NewHistoryStore(cfg.HistoryPath),
		Prices:    services.NewScryfallService(),
		FX:        services.NewFXService(),
		Notify:    services.NewDiscordService(cfg.WebhookURL),
		Archive:   archive,
		RunID:     runID,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		log.Fatalf("Run %s failed: %v", runID, err)
	}

	if err := metrics.Push(cfg.PushgatewayURL); err != nil {
		log.Printf("Failed to push metrics: %v", err)
	}
	log.Printf("Run %s complete", runID)
}
