// Command weeklyreport uploads a weekly summary CSV to the Discord webhook
// with a total-value header line, and pins the message best-effort.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ewhitmore/mtg-price-watch/internal/services"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "CSV file to upload")
	tz := flag.String("tz", "Europe/London", "timezone for the report stamp")
	label := flag.String("label", "Weekly MTG Collection Snapshot", "report label")
	flag.Parse()

	if *file == "" {
		log.Fatal("--file is required")
	}

	webhook := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	if webhook == "" {
		log.Fatal("DISCORD_WEBHOOK_URL is missing")
	}

	totalValue, err := summaryTotal(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	message := fmt.Sprintf("📎 **%s** (%s)\n**Total value:** £%.2f\n\nAttached: `%s`",
		*label, now.Format("02 Jan 2006"), totalValue, filepath.Base(*file))

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("File not found: %s", *file)
	}
	defer f.Close()

	discord := services.NewDiscordService(webhook)
	ctx := context.Background()
	msg, err := discord.UploadFile(ctx, message, filepath.Base(*file), f)
	if err != nil {
		log.Fatalf("Discord upload failed: %v", err)
	}

	// Pinning rides on the webhook token, which not every server honors
	if err := discord.PinMessage(ctx, msg); err != nil {
		log.Printf("Could not pin weekly report: %v", err)
	}
	log.Println("Weekly report uploaded")
}

// summaryTotal sums qty * gbp over the weekly CSV rows, skipping rows with
// either field blank.
func summaryTotal(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	qtyIdx, gbpIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "qty":
			qtyIdx = i
		case "gbp":
			gbpIdx = i
		}
	}
	if qtyIdx < 0 || gbpIdx < 0 {
		return 0, fmt.Errorf("expected qty and gbp columns, found: %v", header)
	}

	var total float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read row: %w", err)
		}
		if qtyIdx >= len(record) || gbpIdx >= len(record) {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(record[qtyIdx]))
		if err != nil {
			continue
		}
		gbp, err := strconv.ParseFloat(strings.TrimSpace(record[gbpIdx]), 64)
		if err != nil {
			continue
		}
		total += float64(qty) * gbp
	}
	return total, nil
}
