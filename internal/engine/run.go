package engine

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ewhitmore/mtg-price-watch/internal/config"
	"github.com/ewhitmore/mtg-price-watch/internal/inventory"
	"github.com/ewhitmore/mtg-price-watch/internal/metrics"
	"github.com/ewhitmore/mtg-price-watch/internal/models"
	"github.com/ewhitmore/mtg-price-watch/internal/report"
	"github.com/ewhitmore/mtg-price-watch/internal/services"
	"github.com/ewhitmore/mtg-price-watch/internal/store"
)

// PriceSource resolves printing identifiers to current card data.
type PriceSource interface {
	LookupCollection(ctx context.Context, identifiers []services.CardIdentifier) (map[services.CardIdentifier]services.Card, error)
}

// RateSource provides the EUR to GBP conversion rate.
type RateSource interface {
	EURToGBP(ctx context.Context) (float64, error)
}

// Notifier delivers formatted notification text.
type Notifier interface {
	Enabled() bool
	PostContent(ctx context.Context, content string) error
}

// Archiver records completed runs. May be nil when the archive is disabled.
type Archiver interface {
	RecordRun(runID string, snap models.Snapshot, alertCount int)
}

// Runner sequences one complete invocation: inventory load, price lookup,
// history update, diff/classification, notification, and state replacement.
type Runner struct {
	Cfg       config.Config
	Snapshots *store.SnapshotStore
	History   *store.HistoryStore
	Prices    PriceSource
	FX        RateSource
	Notify    Notifier
	Archive   Archiver
	RunID     string

	// Now is the run clock; tests pin it. Defaults to time.Now.
	Now func() time.Time
}

// Run executes one invocation. It returns an error only for conditions that
// must abort the run before state is written: unreadable inventory, missing
// CSV columns, a failed price lookup, or a failed state save. Everything
// else degrades and the run completes.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()
	now := r.now()

	// Inventory is validated before any remote call.
	rows, err := inventory.ReadCSVs(r.Cfg.CSVPaths)
	if err != nil {
		return err
	}
	fingerprint, err := inventory.Fingerprint(r.Cfg.CSVPaths)
	if err != nil {
		return err
	}

	prev := r.Snapshots.Load()
	prevSuppress := prev.Meta.SuppressNextNoAlerts
	csvChanged := prev.Meta.InventoryFingerprint != fingerprint

	isScheduledTime := ShouldRunNow(r.Cfg.Timezone, r.Cfg.RunTimes, now)
	allowNotify := r.Notify != nil && r.Notify.Enabled() && !r.Cfg.NoDiscord && isScheduledTime

	// Gate to run times unless this is a baseline run caused by an
	// inventory change, or a manual dashboard refresh.
	if !isScheduledTime {
		switch {
		case r.Cfg.ExportDashboard:
			log.Println("Outside scheduled run time, but exporting dashboard")
		case r.Cfg.BaselineOnCSVChange && csvChanged:
		default:
			log.Println("Not a scheduled run time; exiting")
			return nil
		}
	}

	rate := r.fetchRate(ctx)

	lines := inventory.Aggregate(rows)
	cards, err := r.lookupCards(ctx, lines)
	if err != nil {
		return err
	}
	snap := assembleSnapshot(lines, cards, rate, now, fingerprint)

	// Trend history is seeded on every run with a valid price, before the
	// baseline short-circuit and independent of classification.
	history := store.Update(r.History.Load(), snap.Cards, rate, now, r.Cfg.Thresholds.TrendWindow)
	history = store.Prune(history, snap.Cards)
	if err := r.History.Save(history); err != nil {
		return err
	}

	if r.Cfg.BaselineOnCSVChange && csvChanged {
		return r.finishBaseline(ctx, snap, history, allowNotify, started)
	}

	alerts := Classify(snap, prev, history, r.Cfg.Thresholds)
	grouped := Group(alerts)

	if IsWeeklyTime(r.Cfg.Timezone, r.Cfg.WeeklyDay, r.Cfg.WeeklyTime, now) {
		stamp := now.In(location(r.Cfg.Timezone)).Format("2006-01-02")
		weeklyPath := filepath.Join(r.Cfg.WeeklyDir, fmt.Sprintf("weekly_summary_%s.csv", stamp))
		if err := report.WriteWeeklySummary(weeklyPath, snap.Cards, prev.Cards, rate); err != nil {
			log.Printf("Failed to write weekly summary: %v", err)
		} else {
			log.Printf("Wrote weekly summary %s", weeklyPath)
		}
	}

	if allowNotify {
		r.postAlerts(ctx, grouped, rate, now, prevSuppress, &snap)
	}

	if err := r.Snapshots.Save(snap); err != nil {
		return err
	}

	if r.Archive != nil {
		r.Archive.RecordRun(r.RunID, snap, len(alerts))
	}

	if r.Cfg.ExportDashboard {
		r.exportDashboard(history, snap)
	}

	r.observeRun(snap, alerts, started)
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// fetchRate degrades to nil on any failure: GBP figures go null for the
// run, never stale.
func (r *Runner) fetchRate(ctx context.Context) *float64 {
	if r.FX == nil {
		return nil
	}
	rate, err := r.FX.EURToGBP(ctx)
	if err != nil {
		log.Printf("FX rate unavailable: %v", err)
		return nil
	}
	metrics.FXRateGBP.Set(rate)
	return &rate
}

func (r *Runner) lookupCards(ctx context.Context, lines []inventory.Line) (map[services.CardIdentifier]services.Card, error) {
	seen := make(map[services.CardIdentifier]struct{})
	var identifiers []services.CardIdentifier
	for _, l := range lines {
		id := services.CardIdentifier{
			Set:             l.Identity.Set,
			CollectorNumber: l.Identity.CollectorNumber,
			Language:        l.Identity.Language,
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		identifiers = append(identifiers, id)
	}

	cards, err := r.Prices.LookupCollection(ctx, identifiers)
	if err != nil {
		return nil, fmt.Errorf("price lookup failed, keeping previous state: %w", err)
	}
	return cards, nil
}

// assembleSnapshot joins aggregated inventory lines with looked-up card
// data. Printings Scryfall has no record for are silently excluded.
func assembleSnapshot(lines []inventory.Line, cards map[services.CardIdentifier]services.Card, rate *float64, now time.Time, fingerprint string) models.Snapshot {
	snap := models.NewSnapshot()
	snap.Meta = models.SnapshotMeta{
		GeneratedAt:          now,
		EURToGBP:             rate,
		InventoryFingerprint: fingerprint,
		RunType:              models.RunScheduled,
	}

	for _, l := range lines {
		card, ok := cards[services.CardIdentifier{
			Set:             l.Identity.Set,
			CollectorNumber: l.Identity.CollectorNumber,
			Language:        l.Identity.Language,
		}]
		if !ok {
			continue
		}

		eur := card.Prices.ForFinish(l.Identity.Finish)
		var gbp *float64
		if eur != nil && rate != nil {
			v := *eur * *rate
			gbp = &v
		}

		snap.Cards[l.Identity] = models.PriceRecord{
			Name:            l.Name,
			Set:             l.Identity.Set,
			CollectorNumber: l.Identity.CollectorNumber,
			Language:        l.Identity.Language,
			Finish:          l.Identity.Finish,
			Quantity:        l.Quantity,
			PriceEUR:        eur,
			PriceGBP:        gbp,
			ScryfallURI:     card.ScryfallURI,
			CardmarketURL:   card.CardmarketURL,
			ReleasedYear:    card.ReleasedYear,
			ReservedList:    card.ReservedList,
			Risk:            models.ReprintRisk(card.ReservedList, card.ReleasedYear),
			ObservedAt:      now,
		}
	}
	return snap
}

// finishBaseline completes an inventory-change run: the snapshot is saved
// with the suppression flag armed and no diff or classification happens.
func (r *Runner) finishBaseline(ctx context.Context, snap models.Snapshot, history models.TrendHistory, allowNotify bool, started time.Time) error {
	snap.Meta.RunType = models.RunBaseline
	snap.Meta.SuppressNextNoAlerts = true

	if err := r.Snapshots.Save(snap); err != nil {
		return err
	}
	if r.Archive != nil {
		r.Archive.RecordRun(r.RunID, snap, 0)
	}
	if r.Cfg.ExportDashboard {
		r.exportDashboard(history, snap)
	}

	if allowNotify {
		local := snap.Meta.GeneratedAt.In(location(r.Cfg.Timezone))
		notice := fmt.Sprintf("🧱 **Baseline updated** — collection CSV changed.\nTime: %s (%s)\nAlerts will resume on the next scheduled run.",
			local.Format("2006-01-02 15:04"), r.Cfg.Timezone)
		if err := r.Notify.PostContent(ctx, notice); err != nil {
			log.Printf("Failed to post baseline notice: %v", err)
		}
	}

	r.observeRun(snap, nil, started)
	return nil
}

// postAlerts delivers each non-empty group with its own header, chunked
// between whole records. With nothing to report, the "no alerts" message is
// posted unless the previous baseline run armed the one-shot suppression.
func (r *Runner) postAlerts(ctx context.Context, grouped GroupedAlerts, rate *float64, now time.Time, prevSuppress bool, snap *models.Snapshot) {
	local := now.In(location(r.Cfg.Timezone))
	header := Header(local, r.Cfg.Timezone, rate)

	post := func(content string) {
		if err := r.Notify.PostContent(ctx, content); err != nil {
			log.Printf("Failed to post to discord: %v", err)
		}
	}
	postGroup := func(label string, alerts []Alert) {
		if len(alerts) == 0 {
			return
		}
		post(fmt.Sprintf("%s\n%s: %d", header, label, len(alerts)))
		records := make([]string, len(alerts))
		for i, a := range alerts {
			records[i] = FormatAlert(a)
		}
		for _, msg := range ChunkRecords(records, MessageLimit) {
			post(msg)
		}
	}

	postGroup("Sell candidates", grouped.SellCandidates)
	postGroup("Buy-more signals", grouped.BuySignals)
	postGroup("Trend alerts", grouped.TrendAlerts)
	postGroup("Alerts", grouped.PriceAlerts)

	if grouped.Empty() {
		if prevSuppress {
			// One-shot: consume the flag armed by the last baseline run.
			log.Println("Suppressing 'No alerts today' once (post-baseline)")
			snap.Meta.SuppressNextNoAlerts = false
			return
		}
		post(header + "\nNo alerts today.")
	}
}

func (r *Runner) exportDashboard(history models.TrendHistory, snap models.Snapshot) {
	cardCount, seriesCount, err := report.ExportDashboard(history, snap.Cards, r.Cfg.DashboardOutDir)
	if err != nil {
		log.Printf("Failed to export dashboard: %v", err)
		return
	}
	log.Printf("Exported dashboard to %s (%d cards, %d series)", r.Cfg.DashboardOutDir, cardCount, seriesCount)
}

func (r *Runner) observeRun(snap models.Snapshot, alerts []Alert, started time.Time) {
	metrics.RunsTotal.WithLabelValues(string(snap.Meta.RunType)).Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	metrics.TrackedPrintings.Set(float64(len(snap.Cards)))
	eur, _ := services.TotalValue(snap)
	metrics.CollectionValueEUR.Set(eur)
	for _, a := range alerts {
		metrics.AlertsTotal.WithLabelValues(string(a.Category)).Inc()
	}
}
