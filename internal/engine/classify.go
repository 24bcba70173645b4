// Package engine implements the snapshot diff, trend detection, alert
// classification, and the baseline/suppression state machine, and sequences
// one complete run of the price watcher.
package engine

import (
	"github.com/ewhitmore/mtg-price-watch/internal/config"
	"github.com/ewhitmore/mtg-price-watch/internal/models"
	"github.com/ewhitmore/mtg-price-watch/internal/store"
)

// Category is one alert classification. A printing can match several
// categories in the same run.
type Category string

const (
	CategorySpike      Category = "spike"
	CategoryDip        Category = "dip"
	CategorySell       Category = "sell_candidate"
	CategoryBuy        Category = "buy_more"
	CategoryTrendSpike Category = "trend_spike"
	CategoryTrendDip   Category = "trend_dip"
)

// Alert is one classified price movement with everything the formatter
// needs to render it.
type Alert struct {
	Category Category
	Identity models.PrintingIdentity
	Record   models.PriceRecord

	PrevEUR  float64
	PrevGBP  *float64
	DeltaEUR float64
	DeltaGBP *float64
	Pct      float64

	// Trend fields, set only for trend categories.
	AvgEUR      *float64
	AvgGBP      *float64
	PctVsAvg    float64
	TrendPoints int
}

// Classify diffs the current snapshot against the previous one and the trend
// history, returning every alert the thresholds produce, in stable identity
// order. It never mutates its inputs.
func Classify(current, previous models.Snapshot, history models.TrendHistory, th config.Thresholds) []Alert {
	rate := current.Meta.EURToGBP

	var alerts []Alert
	for _, id := range current.SortedIdentities() {
		rec := current.Cards[id]
		if rec.PriceEUR == nil || *rec.PriceEUR < th.MinPriceEUR {
			continue
		}
		eur := *rec.PriceEUR

		prevRec, ok := previous.Cards[id]
		if !ok || prevRec.PriceEUR == nil || *prevRec.PriceEUR <= 0 {
			// First observation ever: nothing meaningful to diff against.
			continue
		}
		prevEUR := *prevRec.PriceEUR

		deltaEUR := eur - prevEUR
		pct := deltaEUR / prevEUR * 100.0

		var prevGBP, deltaGBP *float64
		if rate != nil {
			g := eur * *rate
			pg := prevEUR * *rate
			d := g - pg
			prevGBP, deltaGBP = &pg, &d
		}

		base := Alert{
			Identity: id,
			Record:   rec,
			PrevEUR:  prevEUR,
			PrevGBP:  prevGBP,
			DeltaEUR: deltaEUR,
			DeltaGBP: deltaGBP,
			Pct:      pct,
		}

		if pct >= th.SpikePct || deltaEUR >= th.SpikeAbsEUR {
			a := base
			a.Category = CategorySpike
			alerts = append(alerts, a)
		}
		if pct <= th.DipPct {
			a := base
			a.Category = CategoryDip
			alerts = append(alerts, a)
		}
		if pct >= th.SellPct || (deltaGBP != nil && *deltaGBP >= th.SellAbsGBP) {
			a := base
			a.Category = CategorySell
			alerts = append(alerts, a)
		}
		if pct <= th.BuyPct {
			a := base
			a.Category = CategoryBuy
			alerts = append(alerts, a)
		}

		entries := history[id]
		if len(entries) < th.TrendMinPoints {
			continue
		}
		avgEUR, avgGBP := store.Average(entries)
		if avgEUR == nil || *avgEUR <= 0 {
			continue
		}

		trend := base
		trend.AvgEUR = avgEUR
		trend.AvgGBP = avgGBP
		trend.PctVsAvg = (eur - *avgEUR) / *avgEUR * 100.0
		trend.TrendPoints = len(entries)

		if eur >= *avgEUR*(1.0+th.TrendSpikePct/100.0) {
			a := trend
			a.Category = CategoryTrendSpike
			alerts = append(alerts, a)
		}
		if eur <= *avgEUR*(1.0+th.TrendDipPct/100.0) {
			a := trend
			a.Category = CategoryTrendDip
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// GroupedAlerts holds alerts split into the four notification groups,
// preserving classification order within each group.
type GroupedAlerts struct {
	PriceAlerts    []Alert // spikes and dips
	SellCandidates []Alert
	BuySignals     []Alert
	TrendAlerts    []Alert
}

func Group(alerts []Alert) GroupedAlerts {
	var g GroupedAlerts
	for _, a := range alerts {
		switch a.Category {
		case CategorySpike, CategoryDip:
			g.PriceAlerts = append(g.PriceAlerts, a)
		case CategorySell:
			g.SellCandidates = append(g.SellCandidates, a)
		case CategoryBuy:
			g.BuySignals = append(g.BuySignals, a)
		case CategoryTrendSpike, CategoryTrendDip:
			g.TrendAlerts = append(g.TrendAlerts, a)
		}
	}
	return g
}

// Empty reports whether no category produced any alert.
func (g GroupedAlerts) Empty() bool {
	return len(g.PriceAlerts) == 0 && len(g.SellCandidates) == 0 &&
		len(g.BuySignals) == 0 && len(g.TrendAlerts) == 0
}
