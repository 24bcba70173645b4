package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// SeriesPoint is one daily price on a dashboard chart. When a day has
// several observations the last one wins.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// CardMeta is one entry in the dashboard's card list.
type CardMeta struct {
	Name   string        `json:"name"`
	Set    string        `json:"set"`
	Finish models.Finish `json:"finish"`
}

// ExportDashboard writes prices.json (per-card daily series, GBP preferred
// over EUR) and cards.json (sorted card list) under outDir for the static
// dashboard. Returns the number of cards and series written.
func ExportDashboard(history models.TrendHistory, cards map[models.PrintingIdentity]models.PriceRecord, outDir string) (cardCount, seriesCount int, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, 0, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	labels := make(map[models.PrintingIdentity]string, len(cards))
	meta := make(map[string]CardMeta)
	for id, rec := range cards {
		label := dashboardLabel(rec)
		labels[id] = label
		if _, ok := meta[label]; !ok {
			meta[label] = CardMeta{Name: label, Set: rec.Set, Finish: rec.Finish}
		}
	}

	series := make(map[string][]SeriesPoint)
	for id, entries := range history {
		label, ok := labels[id]
		if !ok {
			continue
		}

		perDay := make(map[string]float64)
		for _, e := range entries {
			price := e.EUR
			if e.GBP != nil {
				price = *e.GBP
			}
			perDay[e.Timestamp.Format("2006-01-02")] = price
		}
		if len(perDay) == 0 {
			continue
		}

		days := make([]string, 0, len(perDay))
		for d := range perDay {
			days = append(days, d)
		}
		sort.Strings(days)

		points := make([]SeriesPoint, 0, len(days))
		for _, d := range days {
			points = append(points, SeriesPoint{Date: d, Price: perDay[d]})
		}
		series[label] = points
	}

	cardList := make([]CardMeta, 0, len(meta))
	for _, m := range meta {
		cardList = append(cardList, m)
	}
	sort.Slice(cardList, func(i, j int) bool {
		return strings.ToLower(cardList[i].Name) < strings.ToLower(cardList[j].Name)
	})

	if err := writeJSONFile(filepath.Join(outDir, "prices.json"), series); err != nil {
		return 0, 0, err
	}
	if err := writeJSONFile(filepath.Join(outDir, "cards.json"), cardList); err != nil {
		return 0, 0, err
	}
	return len(cardList), len(series), nil
}

func dashboardLabel(rec models.PriceRecord) string {
	return strings.TrimSpace(fmt.Sprintf("%s (%s #%s %s %s)",
		rec.Name, strings.ToUpper(rec.Set), rec.CollectorNumber, rec.Language, rec.Finish))
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
