package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

func fp(v float64) *float64 { return &v }

func record(name string, qty int, eur *float64) models.PriceRecord {
	return models.PriceRecord{
		Name:            name,
		Set:             "neo",
		CollectorNumber: "1",
		Language:        "en",
		Finish:          models.FinishNonfoil,
		Quantity:        qty,
		PriceEUR:        eur,
		Risk:            "Unknown",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open summary: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse summary: %v", err)
	}
	return rows
}

func col(t *testing.T, header []string, name string) int {
	t.Helper()
	for i, h := range header {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %q missing from header %v", name, header)
	return -1
}

func TestWriteWeeklySummary(t *testing.T) {
	idA := models.NewPrintingIdentity("neo", "1", "en", "nonfoil")
	idB := models.NewPrintingIdentity("neo", "2", "en", "foil")

	cards := map[models.PrintingIdentity]models.PriceRecord{
		idA: record("Zealous Conscripts", 2, fp(12)),
		idB: func() models.PriceRecord {
			r := record("Arcane Signet", 1, fp(4))
			r.CollectorNumber = "2"
			r.Finish = models.FinishFoil
			return r
		}(),
	}
	prev := map[models.PrintingIdentity]models.PriceRecord{
		idA: record("Zealous Conscripts", 2, fp(10)),
	}
	rate := 0.85

	path := filepath.Join(t.TempDir(), "weekly", "summary.csv")
	if err := WriteWeeklySummary(path, cards, prev, &rate); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	header := rows[0]

	// Sorted by name: Arcane Signet before Zealous Conscripts.
	if rows[1][col(t, header, "name")] != "Arcane Signet" {
		t.Errorf("rows not sorted by name: %v", rows[1])
	}

	zealous := rows[2]
	if got := zealous[col(t, header, "delta_eur")]; got != "2" {
		t.Errorf("expected delta_eur 2, got %q", got)
	}
	if got := zealous[col(t, header, "pct_change")]; got != "20" {
		t.Errorf("expected pct_change 20, got %q", got)
	}
	if got := zealous[col(t, header, "gbp")]; got != "10.2" {
		t.Errorf("expected gbp 10.2, got %q", got)
	}

	// No previous record for Arcane Signet, so its deltas stay blank.
	signet := rows[1]
	for _, c := range []string{"prev_eur", "delta_eur", "pct_change"} {
		if got := signet[col(t, header, c)]; got != "" {
			t.Errorf("expected blank %s for a new card, got %q", c, got)
		}
	}
}

func TestWriteWeeklySummary_NoRate(t *testing.T) {
	id := models.NewPrintingIdentity("neo", "1", "en", "nonfoil")
	cards := map[models.PrintingIdentity]models.PriceRecord{id: record("Sol Ring", 1, fp(3))}

	path := filepath.Join(t.TempDir(), "summary.csv")
	if err := WriteWeeklySummary(path, cards, nil, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rows := readCSV(t, path)
	header := rows[0]
	if got := rows[1][col(t, header, "gbp")]; got != "" {
		t.Errorf("GBP must be blank without a rate, got %q", got)
	}
	if got := rows[1][col(t, header, "eur")]; got != "3" {
		t.Errorf("expected eur 3, got %q", got)
	}
}
