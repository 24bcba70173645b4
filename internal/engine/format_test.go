package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

func TestMoneyGBPFirst(t *testing.T) {
	eur, gbp := price(12.5), price(10.62)

	cases := []struct {
		eur, gbp *float64
		want     string
	}{
		{eur, gbp, "£10.62 (€12.50)"},
		{nil, gbp, "£10.62"},
		{eur, nil, "€12.50"},
		{nil, nil, "n/a"},
	}
	for _, c := range cases {
		if got := MoneyGBPFirst(c.eur, c.gbp); got != c.want {
			t.Errorf("MoneyGBPFirst(%v, %v) = %q, want %q", c.eur, c.gbp, got, c.want)
		}
	}
}

func TestFormatAlert_Spike(t *testing.T) {
	a := Alert{
		Category: CategorySpike,
		Record: models.PriceRecord{
			Name:            "Lightning Bolt",
			Set:             "neo",
			CollectorNumber: "123",
			Finish:          models.FinishFoil,
			Quantity:        2,
			PriceEUR:        price(14),
			Risk:            "Medium",
			ScryfallURI:     "https://scryfall.com/card/neo/123",
		},
		PrevEUR:  10,
		DeltaEUR: 4,
		Pct:      40,
	}

	msg := FormatAlert(a)
	for _, want := range []string{
		"PRICE SPIKE",
		"**Lightning Bolt**",
		"NEO #123 · foil · x2",
		"+40%",
		"Δ€+4.00",
		"Risk: Medium",
		"https://scryfall.com/card/neo/123",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("spike message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatAlert_SellWithoutRate(t *testing.T) {
	a := Alert{
		Category: CategorySell,
		Record: models.PriceRecord{
			Name:     "Sol Ring",
			Set:      "c21",
			PriceEUR: price(30),
		},
		PrevEUR: 15,
		Pct:     100,
	}
	msg := FormatAlert(a)
	if !strings.Contains(msg, "Δ£n/a") {
		t.Errorf("nil GBP delta should render n/a:\n%s", msg)
	}
}

func TestHeader(t *testing.T) {
	now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

	h := Header(now, "Europe/London", price(0.8512))
	if !strings.Contains(h, "FX: 1 EUR = 0.8512 GBP") {
		t.Errorf("header missing rate: %s", h)
	}
	if !strings.Contains(h, "2025-06-01 07:00") {
		t.Errorf("header missing timestamp: %s", h)
	}

	h = Header(now, "Europe/London", nil)
	if !strings.Contains(h, "FX: unavailable") {
		t.Errorf("header should degrade without rate: %s", h)
	}
}

func TestChunkRecords(t *testing.T) {
	long := strings.Repeat("x", 900)

	// Two records plus the separator exceed the limit, so each of the
	// three goes out alone.
	messages := ChunkRecords([]string{long, long, long}, 1800)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, m := range messages {
		if len(m) != 900 {
			t.Errorf("message %d should hold one whole record, got %d chars", i, len(m))
		}
	}

	// Shorter records pack two to a message.
	short := strings.Repeat("y", 800)
	messages = ChunkRecords([]string{short, short, short}, 1800)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if len(messages[0]) != 800*2+2 {
		t.Errorf("first message should hold two records, got %d chars", len(messages[0]))
	}
	for _, m := range messages {
		if len(m) > 1800 {
			t.Errorf("message exceeds limit: %d", len(m))
		}
	}
}

func TestChunkRecords_Small(t *testing.T) {
	if got := ChunkRecords(nil, 1800); got != nil {
		t.Errorf("no records should produce no messages, got %v", got)
	}

	messages := ChunkRecords([]string{"a", "b"}, 1800)
	if len(messages) != 1 || messages[0] != "a\n\nb" {
		t.Errorf("small records should pack into one message, got %v", messages)
	}
}
