// Package report produces the weekly summary CSV and the static dashboard
// JSON exports.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

var weeklyHeader = []string{
	"name", "set", "collector_number", "lang", "foil_kind", "qty",
	"eur", "gbp", "prev_eur", "prev_gbp", "delta_eur", "delta_gbp", "pct_change",
	"risk", "reserved_list", "released_year", "scryfall_uri", "cardmarket_url",
}

// WriteWeeklySummary writes the full per-printing comparison CSV sorted by
// name, set, collector number, and finish.
func WriteWeeklySummary(path string, cards, prevCards map[models.PrintingIdentity]models.PriceRecord, rate *float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	ids := models.SortIdentities(cards)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := cards[ids[i]], cards[ids[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return ids[i].Less(ids[j])
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(weeklyHeader); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	for _, id := range ids {
		rec := cards[id]
		eur := rec.PriceEUR
		gbp := derived(eur, rate)

		var prevEUR *float64
		if prev, ok := prevCards[id]; ok {
			prevEUR = prev.PriceEUR
		}
		prevGBP := derived(prevEUR, rate)

		var deltaEUR, deltaGBP, pct *float64
		if eur != nil && prevEUR != nil {
			d := *eur - *prevEUR
			deltaEUR = &d
			if *prevEUR != 0 {
				p := d / *prevEUR * 100.0
				pct = &p
			}
		}
		if gbp != nil && prevGBP != nil {
			d := *gbp - *prevGBP
			deltaGBP = &d
		}

		row := []string{
			rec.Name, rec.Set, rec.CollectorNumber, rec.Language, string(rec.Finish),
			strconv.Itoa(rec.Quantity),
			fmtFloat(eur), fmtFloat(gbp), fmtFloat(prevEUR), fmtFloat(prevGBP),
			fmtFloat(deltaEUR), fmtFloat(deltaGBP), fmtFloat(pct),
			rec.Risk, strconv.FormatBool(rec.ReservedList), fmtYear(rec.ReleasedYear),
			rec.ScryfallURI, rec.CardmarketURL,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func derived(eur, rate *float64) *float64 {
	if eur == nil || rate == nil {
		return nil
	}
	v := *eur * *rate
	return &v
}

func fmtFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtYear(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
