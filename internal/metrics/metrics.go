// Package metrics provides Prometheus metrics for the price watcher.
// The tracker is a batch job, so it pushes to a Pushgateway at the end of a
// run; the dashboard server exposes the same registry at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_runs_total",
			Help: "Total number of completed runs by run type",
		},
		[]string{"run_type"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricewatch_run_duration_seconds",
			Help:    "Time taken by one complete run",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_alerts_total",
			Help: "Total number of classified alerts by category",
		},
		[]string{"category"},
	)

	TrackedPrintings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_tracked_printings",
			Help: "Number of distinct printings priced in the last run",
		},
	)

	CollectionValueEUR = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_collection_value_eur",
			Help: "Total collection value in EUR as of the last run",
		},
	)

	// Scryfall API metrics
	ScryfallRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_scryfall_requests_total",
			Help: "Total number of Scryfall API requests made",
		},
	)

	FXRateGBP = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_fx_eur_to_gbp",
			Help: "EUR to GBP rate used by the last run (0 when unavailable)",
		},
	)
)

// Push sends the default registry to a Pushgateway. A blank URL disables
// the push.
func Push(gatewayURL string) error {
	if gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, "pricewatch").
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
