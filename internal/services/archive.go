package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// ArchiveService records one RunSnapshot row plus per-printing observations
// into the sqlite archive after each successful run. The archive is a
// convenience for the dashboard; failures here are logged, never fatal to
// the run.
type ArchiveService struct {
	db *gorm.DB
}

func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// RecordRun persists the run summary and observations. A nil db (archive
// disabled) is a no-op.
func (s *ArchiveService) RecordRun(runID string, snap models.Snapshot, alertCount int) {
	if s == nil || s.db == nil {
		return
	}

	totalEUR, totalGBP := TotalValue(snap)

	row := models.RunSnapshot{
		RunID:         runID,
		RunType:       snap.Meta.RunType,
		GeneratedAt:   snap.Meta.GeneratedAt,
		EURToGBP:      snap.Meta.EURToGBP,
		CardCount:     len(snap.Cards),
		AlertCount:    alertCount,
		TotalValueEUR: totalEUR,
		TotalValueGBP: totalGBP,
		CreatedAt:     time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("Failed to archive run %s: %v", runID, err)
		return
	}

	observations := make([]models.PriceObservation, 0, len(snap.Cards))
	for _, id := range snap.SortedIdentities() {
		rec := snap.Cards[id]
		observations = append(observations, models.PriceObservation{
			RunID:      runID,
			CardKey:    id.String(),
			Name:       rec.Name,
			SetCode:    rec.Set,
			Finish:     rec.Finish,
			Quantity:   rec.Quantity,
			PriceEUR:   rec.PriceEUR,
			PriceGBP:   rec.PriceGBP,
			ObservedAt: rec.ObservedAt,
		})
	}
	if len(observations) == 0 {
		return
	}
	if err := s.db.CreateInBatches(observations, 200).Error; err != nil {
		log.Printf("Failed to archive observations for run %s: %v", runID, err)
	}
}

// TotalValue sums quantity-weighted prices for a snapshot. Exposed for the
// run summary line and metrics.
func TotalValue(snap models.Snapshot) (eur, gbp float64) {
	for _, rec := range snap.Cards {
		if rec.PriceEUR != nil {
			eur += *rec.PriceEUR * float64(rec.Quantity)
		}
		if rec.PriceGBP != nil {
			gbp += *rec.PriceGBP * float64(rec.Quantity)
		}
	}
	return eur, gbp
}
