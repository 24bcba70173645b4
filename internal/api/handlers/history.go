package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// HistoryHandler serves run value history and per-card price series from
// the run archive.
type HistoryHandler struct {
	db          *gorm.DB
	seriesCache *expirable.LRU[string, []SeriesPoint]
}

// SeriesPoint is one observation on a card's price chart.
type SeriesPoint struct {
	Date  string   `json:"date"`
	EUR   *float64 `json:"eur"`
	GBP   *float64 `json:"gbp"`
	RunID string   `json:"run_id"`
}

// CardSummary is one tracked printing in the card list.
type CardSummary struct {
	CardKey  string        `json:"card_key"`
	Name     string        `json:"name"`
	SetCode  string        `json:"set_code"`
	Finish   models.Finish `json:"finish"`
	Quantity int           `json:"qty"`
}

func NewHistoryHandler(db *gorm.DB) *HistoryHandler {
	// Series aggregation scans every observation row for a card; cache the
	// hot ones with a TTL so new runs become visible. 256 entries
	// comfortably covers a personal collection.
	cache := expirable.NewLRU[string, []SeriesPoint](256, nil, 10*time.Minute)
	return &HistoryHandler{db: db, seriesCache: cache}
}

// GetValueHistory returns run snapshots for a period (week/month/year/all).
func (h *HistoryHandler) GetValueHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	query := h.db.Model(&models.RunSnapshot{}).Order("generated_at asc")
	if cutoff, ok := periodCutoff(period, time.Now()); ok {
		query = query.Where("generated_at >= ?", cutoff)
	}

	var snapshots []models.RunSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load value history"})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}

// GetCards returns the printings observed in the most recent run.
func (h *HistoryHandler) GetCards(c *gin.Context) {
	var last models.RunSnapshot
	if err := h.db.Order("generated_at desc").First(&last).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"cards": []CardSummary{}})
		return
	}

	var observations []models.PriceObservation
	if err := h.db.Where("run_id = ?", last.RunID).Order("card_key asc").Find(&observations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cards"})
		return
	}

	cards := make([]CardSummary, 0, len(observations))
	for _, o := range observations {
		cards = append(cards, CardSummary{
			CardKey:  o.CardKey,
			Name:     o.Name,
			SetCode:  o.SetCode,
			Finish:   o.Finish,
			Quantity: o.Quantity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// GetCardSeries returns the price series for one printing key.
func (h *HistoryHandler) GetCardSeries(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card key required"})
		return
	}

	if points, ok := h.seriesCache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{"card_key": key, "series": points})
		return
	}

	var observations []models.PriceObservation
	if err := h.db.Where("card_key = ?", key).Order("observed_at asc").Find(&observations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load series"})
		return
	}
	if len(observations) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown card key"})
		return
	}

	points := make([]SeriesPoint, 0, len(observations))
	for _, o := range observations {
		points = append(points, SeriesPoint{
			Date:  o.ObservedAt.Format("2006-01-02"),
			EUR:   o.PriceEUR,
			GBP:   o.PriceGBP,
			RunID: o.RunID,
		})
	}

	h.seriesCache.Add(key, points)
	c.JSON(http.StatusOK, gin.H{"card_key": key, "series": points})
}

func periodCutoff(period string, now time.Time) (time.Time, bool) {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	case "year":
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
