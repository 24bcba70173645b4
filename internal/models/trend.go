package models

import (
	"time"
)

// TrendEntry is one appended price observation in a printing's rolling
// window. GBP is nil when the FX rate was unavailable for that run.
type TrendEntry struct {
	Timestamp time.Time `json:"ts"`
	EUR       float64   `json:"eur"`
	GBP       *float64  `json:"gbp"`
}

// TrendHistory holds the bounded rolling window of recent observations per
// printing. Entries are in insertion order, which is also chronological
// because runs happen monotonically in time.
type TrendHistory map[PrintingIdentity][]TrendEntry
