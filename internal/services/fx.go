package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"
)

const ecbRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// FXService fetches the daily EUR reference rates published by the ECB.
type FXService struct {
	client   *http.Client
	ratesURL string
}

func NewFXService() *FXService {
	return &FXService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		ratesURL: ecbRatesURL,
	}
}

// NewFXServiceWithURL points the client at a local server. Used by tests.
func NewFXServiceWithURL(url string) *FXService {
	s := NewFXService()
	s.ratesURL = url
	return s
}

type ecbEnvelope struct {
	Cubes []ecbCube `xml:"Cube>Cube>Cube"`
}

type ecbCube struct {
	Currency string  `xml:"currency,attr"`
	Rate     float64 `xml:"rate,attr"`
}

// EURToGBP returns the amount of GBP per one EUR. Callers treat any error
// as "rate unavailable" and degrade GBP figures to null for the run.
func (s *FXService) EURToGBP(ctx context.Context) (float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "GET", s.ratesURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch ECB rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ECB rates returned status %d", resp.StatusCode)
	}

	var envelope ecbEnvelope
	if err := xml.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("failed to decode ECB rates: %w", err)
	}

	for _, cube := range envelope.Cubes {
		if cube.Currency == "GBP" {
			return cube.Rate, nil
		}
	}
	return 0, fmt.Errorf("GBP rate not present in ECB feed")
}
