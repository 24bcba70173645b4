package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

func price(v float64) *float64 { return &v }

func cardsWith(prices map[models.PrintingIdentity]*float64) map[models.PrintingIdentity]models.PriceRecord {
	cards := make(map[models.PrintingIdentity]models.PriceRecord, len(prices))
	for id, p := range prices {
		cards[id] = models.PriceRecord{Set: id.Set, CollectorNumber: id.CollectorNumber, PriceEUR: p}
	}
	return cards
}

func TestHistoryStore_LoadAbsentOrCorrupt(t *testing.T) {
	dir := t.TempDir()

	if h := NewHistoryStore(filepath.Join(dir, "missing.json")).Load(); len(h) != 0 {
		t.Error("missing file should load as empty history")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("[1,2,3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if h := NewHistoryStore(corrupt).Load(); len(h) != 0 {
		t.Error("corrupt file should load as empty history")
	}
}

func TestUpdate_AppendsAndBounds(t *testing.T) {
	id := models.NewPrintingIdentity("neo", "1", "English", "")
	cards := cardsWith(map[models.PrintingIdentity]*float64{id: price(5)})
	rate := 0.85

	history := models.TrendHistory{}
	now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		history = Update(history, cards, &rate, now.AddDate(0, 0, i), 14)
	}

	entries := history[id]
	if len(entries) != 14 {
		t.Fatalf("window should cap at 14 entries, got %d", len(entries))
	}
	// Oldest entries evicted in insertion order.
	if got := entries[0].Timestamp; got != now.AddDate(0, 0, 6) {
		t.Errorf("expected oldest surviving entry from day 6, got %v", got)
	}
	if entries[0].GBP == nil || *entries[0].GBP != 5*0.85 {
		t.Errorf("GBP should be derived from the rate, got %v", entries[0].GBP)
	}
}

func TestUpdate_NilPriceAndNilRate(t *testing.T) {
	withPrice := models.NewPrintingIdentity("neo", "1", "English", "")
	noPrice := models.NewPrintingIdentity("neo", "2", "English", "")
	cards := cardsWith(map[models.PrintingIdentity]*float64{
		withPrice: price(3),
		noPrice:   nil,
	})

	history := Update(models.TrendHistory{}, cards, nil, time.Now(), 14)
	if _, ok := history[noPrice]; ok {
		t.Error("nil price must not append an entry")
	}
	entries := history[withPrice]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].GBP != nil {
		t.Error("missing rate should yield nil GBP, not a fabricated value")
	}
}

func TestPrune(t *testing.T) {
	kept := models.NewPrintingIdentity("neo", "1", "English", "")
	retired := models.NewPrintingIdentity("neo", "2", "English", "")

	history := models.TrendHistory{
		kept:    {{EUR: 1}},
		retired: {{EUR: 2}},
	}
	cards := cardsWith(map[models.PrintingIdentity]*float64{kept: price(1)})

	pruned := Prune(history, cards)
	if _, ok := pruned[retired]; ok {
		t.Error("retired printing should be pruned")
	}
	if _, ok := pruned[kept]; !ok {
		t.Error("current printing should survive pruning")
	}
}

func TestAverage(t *testing.T) {
	avgEUR, avgGBP := Average(nil)
	if avgEUR != nil || avgGBP != nil {
		t.Error("empty sequence should average to nil, nil")
	}

	entries := []models.TrendEntry{
		{EUR: 10, GBP: price(8)},
		{EUR: 20, GBP: nil},
		{EUR: 30, GBP: price(24)},
	}
	avgEUR, avgGBP = Average(entries)
	if avgEUR == nil || *avgEUR != 20 {
		t.Errorf("EUR average should include all entries, got %v", avgEUR)
	}
	if avgGBP == nil || *avgGBP != 16 {
		t.Errorf("GBP average should skip nil entries only, got %v", avgGBP)
	}
}

func TestHistoryStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewHistoryStore(path)

	id := models.NewPrintingIdentity("neo", "1", "English", "foil")
	history := models.TrendHistory{
		id: {{Timestamp: time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC), EUR: 4.2, GBP: price(3.5)}},
	}
	if err := s.Save(history); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := s.Load()
	entries, ok := loaded[id]
	if !ok || len(entries) != 1 {
		t.Fatalf("history lost in round trip: %v", loaded)
	}
	if entries[0].EUR != 4.2 || entries[0].GBP == nil || *entries[0].GBP != 3.5 {
		t.Errorf("entry values lost: %+v", entries[0])
	}
}
