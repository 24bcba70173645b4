package models

import (
	"sort"
	"time"
)

// RunType distinguishes a normal comparison run from a baseline rebuild
// triggered by an inventory change.
type RunType string

const (
	RunScheduled RunType = "scheduled"
	RunBaseline  RunType = "baseline"
)

// PriceRecord is one price observation for a printing. PriceEUR is nil when
// Scryfall has no listing for the requested finish and no nonfoil fallback.
// PriceGBP is derived from PriceEUR and the run's FX rate; it is nil whenever
// the rate or the EUR price is unavailable.
type PriceRecord struct {
	Name            string    `json:"name"`
	Set             string    `json:"set"`
	CollectorNumber string    `json:"collector_number"`
	Language        string    `json:"lang"`
	Finish          Finish    `json:"finish"`
	Quantity        int       `json:"qty"`
	PriceEUR        *float64  `json:"eur"`
	PriceGBP        *float64  `json:"gbp"`
	ScryfallURI     string    `json:"scryfall_uri,omitempty"`
	CardmarketURL   string    `json:"cardmarket_url,omitempty"`
	ReleasedYear    *int      `json:"released_year,omitempty"`
	ReservedList    bool      `json:"reserved_list"`
	Risk            string    `json:"risk"`
	ObservedAt      time.Time `json:"observed_at"`
}

// SnapshotMeta records run-level state alongside the card prices. The
// inventory fingerprint and suppression flag drive the baseline state
// machine on the next run.
type SnapshotMeta struct {
	GeneratedAt          time.Time `json:"generated_at"`
	EURToGBP             *float64  `json:"eur_to_gbp"`
	InventoryFingerprint string    `json:"inventory_sha256"`
	RunType              RunType   `json:"run_type"`
	SuppressNextNoAlerts bool      `json:"suppress_next_no_alerts"`
}

// Snapshot is the full persisted state of one run: meta plus one PriceRecord
// per printing. It is always written wholesale, never merged.
type Snapshot struct {
	Meta  SnapshotMeta                     `json:"_meta"`
	Cards map[PrintingIdentity]PriceRecord `json:"cards"`
}

// NewSnapshot returns an empty snapshot with an initialized card map.
func NewSnapshot() Snapshot {
	return Snapshot{Cards: make(map[PrintingIdentity]PriceRecord)}
}

// SortedIdentities returns the snapshot's printing keys in stable order.
func (s Snapshot) SortedIdentities() []PrintingIdentity {
	return SortIdentities(s.Cards)
}

// SortIdentities returns the keys of a card map in stable order.
func SortIdentities[V any](m map[PrintingIdentity]V) []PrintingIdentity {
	keys := make([]PrintingIdentity, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
