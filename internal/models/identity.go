package models

import (
	"fmt"
	"strings"
)

// Finish is the surface treatment of a printing. It affects which price
// field Scryfall reports for the card.
type Finish string

const (
	FinishNonfoil Finish = "nonfoil"
	FinishFoil    Finish = "foil"
	FinishEtched  Finish = "etched"
)

// ParseFinish maps a free-text finish column to a Finish.
// Blank or unrecognized values mean nonfoil.
func ParseFinish(s string) Finish {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foil":
		return FinishFoil
	case "etched":
		return FinishEtched
	default:
		return FinishNonfoil
	}
}

// langCodes maps the free-text language names that appear in collection
// exports to Scryfall language codes.
var langCodes = map[string]string{
	"English":             "en",
	"Japanese":            "ja",
	"German":              "de",
	"French":              "fr",
	"Italian":             "it",
	"Spanish":             "es",
	"Portuguese":          "pt",
	"Russian":             "ru",
	"Korean":              "ko",
	"Chinese Simplified":  "zhs",
	"Chinese Traditional": "zht",
}

// NormalizeLanguage maps a free-text language name to a language code.
// Unknown or blank input means "en".
func NormalizeLanguage(s string) string {
	if code, ok := langCodes[strings.TrimSpace(s)]; ok {
		return code
	}
	return "en"
}

// PrintingIdentity is the composite key for one distinct printing of a card.
// Two inventory rows that normalize to the same identity are the same
// printing and have their quantities summed before lookup.
type PrintingIdentity struct {
	Set             string
	CollectorNumber string
	Language        string
	Finish          Finish
}

// NewPrintingIdentity normalizes raw inventory fields into an identity.
// It is total: any input produces a usable key.
func NewPrintingIdentity(set, collectorNumber, language, finish string) PrintingIdentity {
	return PrintingIdentity{
		Set:             strings.ToLower(strings.TrimSpace(set)),
		CollectorNumber: strings.TrimSpace(collectorNumber),
		Language:        NormalizeLanguage(language),
		Finish:          ParseFinish(finish),
	}
}

func (p PrintingIdentity) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", p.Set, p.CollectorNumber, p.Language, p.Finish)
}

// Less orders identities by set, collector number, language, finish.
// Used to produce deterministic alert and report ordering.
func (p PrintingIdentity) Less(o PrintingIdentity) bool {
	if p.Set != o.Set {
		return p.Set < o.Set
	}
	if p.CollectorNumber != o.CollectorNumber {
		return p.CollectorNumber < o.CollectorNumber
	}
	if p.Language != o.Language {
		return p.Language < o.Language
	}
	return p.Finish < o.Finish
}

// MarshalText lets identities serve as JSON object keys in the snapshot
// and history documents.
func (p PrintingIdentity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the persisted key form. Set codes and collector
// numbers never contain the separator, so a simple split is enough.
func (p *PrintingIdentity) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), "|")
	if len(parts) != 4 {
		return fmt.Errorf("malformed printing key %q", string(text))
	}
	p.Set = parts[0]
	p.CollectorNumber = parts[1]
	p.Language = parts[2]
	p.Finish = ParseFinish(parts[3])
	return nil
}
