package models

import (
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"English", "en"},
		{"Japanese", "ja"},
		{"Chinese Simplified", "zhs"},
		{"  German  ", "de"},
		{"", "en"},
		{"Klingon", "en"},
	}
	for _, c := range cases {
		if got := NormalizeLanguage(c.in); got != c.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseFinish(t *testing.T) {
	cases := []struct {
		in   string
		want Finish
	}{
		{"foil", FinishFoil},
		{" Foil ", FinishFoil},
		{"etched", FinishEtched},
		{"", FinishNonfoil},
		{"holo", FinishNonfoil},
	}
	for _, c := range cases {
		if got := ParseFinish(c.in); got != c.want {
			t.Errorf("ParseFinish(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewPrintingIdentity_Normalization(t *testing.T) {
	a := NewPrintingIdentity(" NEO ", " 123 ", "English", "Foil")
	b := NewPrintingIdentity("neo", "123", "English", "foil")

	if a != b {
		t.Errorf("normalized identities should be equal: %v vs %v", a, b)
	}
	if a.Set != "neo" {
		t.Errorf("set should be lowercased and trimmed, got %q", a.Set)
	}
	if a.CollectorNumber != "123" {
		t.Errorf("collector number should be trimmed, got %q", a.CollectorNumber)
	}
	if a.Language != "en" {
		t.Errorf("language should be normalized, got %q", a.Language)
	}
	if a.Finish != FinishFoil {
		t.Errorf("finish should be parsed, got %q", a.Finish)
	}
}

func TestPrintingIdentity_TextRoundTrip(t *testing.T) {
	orig := NewPrintingIdentity("neo", "123", "Japanese", "etched")

	text, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed PrintingIdentity
	if err := parsed.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed != orig {
		t.Errorf("round trip mismatch: %v vs %v", parsed, orig)
	}
}

func TestPrintingIdentity_UnmarshalMalformed(t *testing.T) {
	var p PrintingIdentity
	if err := p.UnmarshalText([]byte("neo|123")); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestSortIdentities(t *testing.T) {
	m := map[PrintingIdentity]int{
		NewPrintingIdentity("neo", "2", "English", ""):     0,
		NewPrintingIdentity("neo", "1", "English", "foil"): 0,
		NewPrintingIdentity("neo", "1", "English", ""):     0,
		NewPrintingIdentity("2xm", "9", "English", ""):     0,
	}
	keys := SortIdentities(m)
	if keys[0].Set != "2xm" {
		t.Errorf("expected 2xm first, got %v", keys[0])
	}
	if keys[1].CollectorNumber != "1" || keys[1].Finish != FinishFoil {
		t.Errorf("expected neo #1 foil second, got %v", keys[1])
	}
}

func TestReprintRisk(t *testing.T) {
	year := func(y int) *int { return &y }

	cases := []struct {
		reserved bool
		year     *int
		want     string
	}{
		{true, year(2020), "Very Low (RL)"},
		{false, nil, "Unknown"},
		{false, year(1999), "Low (Older printing)"},
		{false, year(2003), "Low (Older printing)"},
		{false, year(2010), "Medium"},
		{false, year(2015), "Medium"},
		{false, year(2023), "Medium/High"},
	}
	for _, c := range cases {
		if got := ReprintRisk(c.reserved, c.year); got != c.want {
			t.Errorf("ReprintRisk(%v, %v) = %q, want %q", c.reserved, c.year, got, c.want)
		}
	}
}
