// Package config collects every tunable of the price watcher into one value
// object so the engine can be tested with arbitrary threshold combinations.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Thresholds are the alert classification knobs. Dip and buy thresholds are
// negative percentages; spike and sell gates are OR-combined with their
// absolute counterparts.
type Thresholds struct {
	MinPriceEUR    float64
	SpikePct       float64
	SpikeAbsEUR    float64
	DipPct         float64
	SellPct        float64
	SellAbsGBP     float64
	BuyPct         float64
	TrendWindow    int
	TrendSpikePct  float64
	TrendDipPct    float64
	TrendMinPoints int
}

// Config is the full run configuration for one invocation.
type Config struct {
	CSVPaths     []string
	SnapshotPath string
	HistoryPath  string
	ArchivePath  string

	Thresholds Thresholds

	Timezone   string
	RunTimes   string // comma-separated local times, e.g. "07:00,19:00"
	WeeklyDay  string // MON..SUN
	WeeklyTime string
	WeeklyDir  string

	BaselineOnCSVChange bool
	ExportDashboard     bool
	DashboardOutDir     string
	NoDiscord           bool

	WebhookURL     string
	PushgatewayURL string
}

// Defaults returns the configuration the watcher ships with.
func Defaults() Config {
	return Config{
		SnapshotPath: "data/last_prices.json",
		HistoryPath:  "data/history.json",
		ArchivePath:  "data/pricewatch.db",
		Thresholds: Thresholds{
			MinPriceEUR:    1.5,
			SpikePct:       30.0,
			SpikeAbsEUR:    2.0,
			DipPct:         -25.0,
			SellPct:        80.0,
			SellAbsGBP:     5.0,
			BuyPct:         -30.0,
			TrendWindow:    14,
			TrendSpikePct:  20.0,
			TrendDipPct:    -15.0,
			TrendMinPoints: 6,
		},
		Timezone:        "Europe/London",
		RunTimes:        "07:00,19:00",
		WeeklyDay:       "SUN",
		WeeklyTime:      "19:00",
		WeeklyDir:       "data/weekly",
		DashboardOutDir: "docs/data",
	}
}

// Load parses command-line arguments on top of the defaults and picks up
// secrets from the environment. It fails only on flag syntax errors or a
// missing --csv.
func Load(args []string) (Config, error) {
	cfg := Defaults()

	fs := flag.NewFlagSet("pricewatch", flag.ContinueOnError)
	csvArg := fs.String("csv", "", "path(s) to collection export CSV, comma-separated")
	fs.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "where to store last run prices")
	fs.StringVar(&cfg.HistoryPath, "history", cfg.HistoryPath, "where to store the trend history")
	fs.StringVar(&cfg.ArchivePath, "archive", cfg.ArchivePath, "sqlite run archive path")

	fs.Float64Var(&cfg.Thresholds.MinPriceEUR, "min-price-eur", cfg.Thresholds.MinPriceEUR, "ignore cards below this EUR price")
	fs.Float64Var(&cfg.Thresholds.SpikePct, "spike-pct", cfg.Thresholds.SpikePct, "spike threshold percent")
	fs.Float64Var(&cfg.Thresholds.SpikeAbsEUR, "spike-abs-eur", cfg.Thresholds.SpikeAbsEUR, "spike threshold absolute EUR increase")
	fs.Float64Var(&cfg.Thresholds.DipPct, "dip-pct", cfg.Thresholds.DipPct, "dip threshold percent (negative)")
	fs.Float64Var(&cfg.Thresholds.SellPct, "sell-candidate-pct", cfg.Thresholds.SellPct, "sell-candidate threshold percent gain")
	fs.Float64Var(&cfg.Thresholds.SellAbsGBP, "sell-candidate-abs-gbp", cfg.Thresholds.SellAbsGBP, "sell-candidate threshold absolute GBP gain")
	fs.Float64Var(&cfg.Thresholds.BuyPct, "buy-more-pct", cfg.Thresholds.BuyPct, "buy-more signal threshold percent drop (negative)")
	fs.IntVar(&cfg.Thresholds.TrendWindow, "trend-window", cfg.Thresholds.TrendWindow, "trend window entries for moving average")
	fs.Float64Var(&cfg.Thresholds.TrendSpikePct, "trend-spike-pct", cfg.Thresholds.TrendSpikePct, "trend spike threshold percent over average")
	fs.Float64Var(&cfg.Thresholds.TrendDipPct, "trend-dip-pct", cfg.Thresholds.TrendDipPct, "trend dip threshold percent under average (negative)")
	fs.IntVar(&cfg.Thresholds.TrendMinPoints, "trend-min-points", cfg.Thresholds.TrendMinPoints, "minimum data points required for trend alerts")

	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "timezone for run gating")
	fs.StringVar(&cfg.RunTimes, "run-times", cfg.RunTimes, "comma-separated local run times")
	fs.StringVar(&cfg.WeeklyDay, "weekly-day", cfg.WeeklyDay, "weekly summary day (MON..SUN)")
	fs.StringVar(&cfg.WeeklyTime, "weekly-time", cfg.WeeklyTime, "weekly summary local time")
	fs.StringVar(&cfg.WeeklyDir, "weekly-dir", cfg.WeeklyDir, "weekly summary output dir")

	fs.BoolVar(&cfg.BaselineOnCSVChange, "baseline-on-csv-change", false, "if the CSV changed, run a baseline snapshot update and skip alerts")
	fs.BoolVar(&cfg.ExportDashboard, "export-dashboard", false, "export dashboard prices.json and cards.json")
	fs.StringVar(&cfg.DashboardOutDir, "dashboard-out-dir", cfg.DashboardOutDir, "dashboard output dir")
	fs.BoolVar(&cfg.NoDiscord, "no-discord", false, "do not post alerts to Discord")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(*csvArg) == "" {
		return Config{}, fmt.Errorf("--csv is required")
	}
	cfg.CSVPaths = SplitCSVList(*csvArg)
	if len(cfg.CSVPaths) == 0 {
		return Config{}, fmt.Errorf("--csv is required")
	}

	cfg.WebhookURL = strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	cfg.PushgatewayURL = strings.TrimSpace(os.Getenv("PUSHGATEWAY_URL"))

	return cfg, nil
}

// SplitCSVList splits a comma-separated argument, dropping empty parts.
func SplitCSVList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
