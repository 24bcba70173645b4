package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ewhitmore/mtg-price-watch/internal/metrics"
	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

const (
	scryfallBaseURL = "https://api.scryfall.com"

	// CollectionBatchSize is the Scryfall /cards/collection identifier limit.
	CollectionBatchSize = 75
)

// ScryfallService looks up card data and prices from the Scryfall API.
type ScryfallService struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewScryfallService() *ScryfallService {
	return &ScryfallService{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		// Scryfall asks for 50-100ms between requests; 8/s with burst 1
		// keeps batches politely spaced.
		limiter: rate.NewLimiter(rate.Limit(8), 1),
		baseURL: scryfallBaseURL,
	}
}

// NewScryfallServiceWithBaseURL points the client at a local server. Used by
// tests.
func NewScryfallServiceWithBaseURL(baseURL string) *ScryfallService {
	s := NewScryfallService()
	s.baseURL = baseURL
	s.limiter = rate.NewLimiter(rate.Inf, 1)
	return s
}

// CardIdentifier is one lookup key for the collection endpoint. Finish is
// not part of the remote key: all finishes of a printing come back on the
// same card object.
type CardIdentifier struct {
	Set             string `json:"set"`
	CollectorNumber string `json:"collector_number"`
	Language        string `json:"lang"`
}

// Card is the subset of a Scryfall card object the watcher uses.
type Card struct {
	Name            string
	Set             string
	CollectorNumber string
	Language        string
	Prices          CardPrices
	ScryfallURI     string
	CardmarketURL   string
	ReleasedYear    *int
	ReservedList    bool
}

// CardPrices holds the EUR price per finish. Any field may be nil when
// Scryfall has no listing for that finish.
type CardPrices struct {
	EUR       *float64
	EURFoil   *float64
	EUREtched *float64
}

// ForFinish returns the EUR price for a finish, falling back to the base
// nonfoil price when the finish-specific field is absent. The fallback is a
// deliberate approximation for printings Scryfall does not price per finish.
func (p CardPrices) ForFinish(finish models.Finish) *float64 {
	var v *float64
	switch finish {
	case models.FinishFoil:
		v = p.EURFoil
	case models.FinishEtched:
		v = p.EUREtched
	default:
		v = p.EUR
	}
	if v == nil {
		v = p.EUR
	}
	return v
}

type collectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

type collectionResponse struct {
	Data []scryfallCard `json:"data"`
}

type scryfallCard struct {
	Name         string            `json:"name"`
	Set          string            `json:"set"`
	CollectorNum string            `json:"collector_number"`
	Lang         string            `json:"lang"`
	Prices       scryfallPrices    `json:"prices"`
	PurchaseURIs map[string]string `json:"purchase_uris"`
	ScryfallURI  string            `json:"scryfall_uri"`
	ReleasedAt   string            `json:"released_at"`
	Reserved     bool              `json:"reserved"`
}

type scryfallPrices struct {
	EUR       string `json:"eur"`
	EURFoil   string `json:"eur_foil"`
	EUREtched string `json:"eur_etched"`
}

// LookupCollection resolves identifiers against /cards/collection in batches
// of up to CollectionBatchSize. Identifiers Scryfall has no record for are
// simply absent from the result; that is not an error. Any transport or
// decode failure aborts the whole lookup so the caller can fail closed.
func (s *ScryfallService) LookupCollection(ctx context.Context, identifiers []CardIdentifier) (map[CardIdentifier]Card, error) {
	found := make(map[CardIdentifier]Card, len(identifiers))

	for start := 0; start < len(identifiers); start += CollectionBatchSize {
		end := start + CollectionBatchSize
		if end > len(identifiers) {
			end = len(identifiers)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		cards, err := s.lookupBatch(ctx, identifiers[start:end])
		if err != nil {
			return nil, err
		}
		for id, c := range cards {
			found[id] = c
		}
	}
	return found, nil
}

func (s *ScryfallService) lookupBatch(ctx context.Context, batch []CardIdentifier) (map[CardIdentifier]Card, error) {
	body, err := json.Marshal(collectionRequest{Identifiers: batch})
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "POST", s.baseURL+"/cards/collection", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	metrics.ScryfallRequestsTotal.Inc()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query scryfall collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var collResp collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&collResp); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}

	cards := make(map[CardIdentifier]Card, len(collResp.Data))
	for _, sc := range collResp.Data {
		c := convertCard(sc)
		id := CardIdentifier{
			Set:             strings.ToLower(c.Set),
			CollectorNumber: strings.TrimSpace(c.CollectorNumber),
			Language:        strings.ToLower(c.Language),
		}
		cards[id] = c
	}
	return cards, nil
}

func convertCard(sc scryfallCard) Card {
	card := Card{
		Name:            sc.Name,
		Set:             sc.Set,
		CollectorNumber: sc.CollectorNum,
		Language:        sc.Lang,
		ScryfallURI:     sc.ScryfallURI,
		CardmarketURL:   sc.PurchaseURIs["cardmarket"],
		ReservedList:    sc.Reserved,
		Prices: CardPrices{
			EUR:       parsePrice(sc.Prices.EUR),
			EURFoil:   parsePrice(sc.Prices.EURFoil),
			EUREtched: parsePrice(sc.Prices.EUREtched),
		},
	}
	if len(sc.ReleasedAt) >= 4 {
		if year, err := strconv.Atoi(sc.ReleasedAt[:4]); err == nil {
			card.ReleasedYear = &year
		}
	}
	return card
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
