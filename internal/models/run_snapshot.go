package models

import (
	"time"
)

// RunSnapshot stores one archive row per completed run for historical
// value tracking and the dashboard API.
type RunSnapshot struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID         string    `json:"run_id" gorm:"uniqueIndex;not null"`
	RunType       RunType   `json:"run_type" gorm:"index"`
	GeneratedAt   time.Time `json:"generated_at" gorm:"index;not null"`
	EURToGBP      *float64  `json:"eur_to_gbp"`
	CardCount     int       `json:"card_count"`
	AlertCount    int       `json:"alert_count"`
	TotalValueEUR float64   `json:"total_value_eur"`
	TotalValueGBP float64   `json:"total_value_gbp"`
	CreatedAt     time.Time `json:"created_at"`
}

// PriceObservation stores one per-printing price point per run. The
// dashboard serves its per-card series from these rows.
type PriceObservation struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID      string    `json:"run_id" gorm:"index;not null"`
	CardKey    string    `json:"card_key" gorm:"index;not null"`
	Name       string    `json:"name"`
	SetCode    string    `json:"set_code"`
	Finish     Finish    `json:"finish"`
	Quantity   int       `json:"qty"`
	PriceEUR   *float64  `json:"eur"`
	PriceGBP   *float64  `json:"gbp"`
	ObservedAt time.Time `json:"observed_at" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValueHistoryResponse is the API response for run value history
type ValueHistoryResponse struct {
	Snapshots []RunSnapshot `json:"snapshots"`
	Period    string        `json:"period"` // "week", "month", "year", "all"
}
