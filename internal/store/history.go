package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// HistoryStore reads and replaces the rolling trend-history document.
type HistoryStore struct {
	path string
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Load returns the persisted trend history, or an empty one when no usable
// prior state exists.
func (s *HistoryStore) Load() models.TrendHistory {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return models.TrendHistory{}
	}

	var history models.TrendHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return models.TrendHistory{}
	}
	if history == nil {
		history = models.TrendHistory{}
	}
	return history
}

// Save replaces the history document wholesale (temp file + rename).
func (s *HistoryStore) Save(history models.TrendHistory) error {
	return writeJSON(s.path, history)
}

// Update appends one entry per printing that has a price this run and trims
// each sequence to the last window entries. Printings with a nil price are
// left untouched; they never accrue entries.
func Update(history models.TrendHistory, cards map[models.PrintingIdentity]models.PriceRecord, rate *float64, now time.Time, window int) models.TrendHistory {
	if history == nil {
		history = models.TrendHistory{}
	}
	for id, rec := range cards {
		if rec.PriceEUR == nil {
			continue
		}
		entry := models.TrendEntry{Timestamp: now, EUR: *rec.PriceEUR}
		if rate != nil {
			gbp := *rec.PriceEUR * *rate
			entry.GBP = &gbp
		}
		entries := append(history[id], entry)
		if len(entries) > window {
			entries = entries[len(entries)-window:]
		}
		history[id] = entries
	}
	return history
}

// Prune drops every printing absent from the current run's price data, so
// retired printings do not accumulate forever.
func Prune(history models.TrendHistory, cards map[models.PrintingIdentity]models.PriceRecord) models.TrendHistory {
	pruned := models.TrendHistory{}
	for id, entries := range history {
		if _, ok := cards[id]; ok {
			pruned[id] = entries
		}
	}
	return pruned
}

// Average returns the arithmetic mean of each currency over the entries,
// skipping nil GBP values without excluding those entries from the EUR
// average. Both means are nil for an empty sequence.
func Average(entries []models.TrendEntry) (*float64, *float64) {
	var eurSum, gbpSum float64
	var eurN, gbpN int
	for _, e := range entries {
		eurSum += e.EUR
		eurN++
		if e.GBP != nil {
			gbpSum += *e.GBP
			gbpN++
		}
	}

	var avgEUR, avgGBP *float64
	if eurN > 0 {
		v := eurSum / float64(eurN)
		avgEUR = &v
	}
	if gbpN > 0 {
		v := gbpSum / float64(gbpN)
		avgGBP = &v
	}
	return avgEUR, avgGBP
}
