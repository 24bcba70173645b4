package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ewhitmore/mtg-price-watch/internal/api"
	"github.com/ewhitmore/mtg-price-watch/internal/database"
)

func main() {
	_ = godotenv.Load()

	dbPath := os.Getenv("ARCHIVE_PATH")
	if dbPath == "" {
		dbPath = "data/pricewatch.db"
	}
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to open run archive: %v", err)
	}

	router := api.SetupRouter(database.GetDB())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Dashboard listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
