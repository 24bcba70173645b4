package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const sampleCSV = `Count,Name,Edition,Collector Number,Language,Foil,Proxy
2,Lightning Bolt,NEO,123,English,,
1,Lightning Bolt,neo,123,English,,
1,Lightning Bolt,neo,123,English,foil,
3,Fake Bolt,neo,123,English,,TRUE
1,Sol Ring,c21,1,Japanese,etched,
`

func TestReadCSVs_MissingFile(t *testing.T) {
	_, err := ReadCSVs([]string{"/nonexistent/cards.csv"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadCSVs_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "bad.csv", "Count,Name\n1,Bolt\n")

	_, err := ReadCSVs([]string{path})
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	for _, col := range []string{"Edition", "Collector Number", "Language", "Foil"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error should name missing column %q: %v", col, err)
		}
	}
	if !strings.Contains(err.Error(), "found") {
		t.Errorf("error should enumerate found columns: %v", err)
	}
}

func TestAggregate(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "cards.csv", sampleCSV)

	rows, err := ReadCSVs([]string{path})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	lines := Aggregate(rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 distinct printings, got %d", len(lines))
	}

	byID := make(map[models.PrintingIdentity]Line)
	for _, l := range lines {
		byID[l.Identity] = l
	}

	nonfoil := byID[models.NewPrintingIdentity("neo", "123", "English", "")]
	if nonfoil.Quantity != 3 {
		t.Errorf("expected nonfoil quantity 3 (proxy excluded, duplicates summed), got %d", nonfoil.Quantity)
	}
	if nonfoil.Name != "Lightning Bolt" {
		t.Errorf("expected name from first row, got %q", nonfoil.Name)
	}

	foil := byID[models.NewPrintingIdentity("neo", "123", "English", "foil")]
	if foil.Quantity != 1 {
		t.Errorf("expected foil quantity 1, got %d", foil.Quantity)
	}

	etched := byID[models.NewPrintingIdentity("c21", "1", "Japanese", "etched")]
	if etched.Identity.Language != "ja" {
		t.Errorf("expected language ja, got %q", etched.Identity.Language)
	}
}

func TestAggregate_StableOrder(t *testing.T) {
	rows := []Row{
		{Count: 1, Name: "B", Edition: "znr", CollectorNumber: "5", Language: "English"},
		{Count: 1, Name: "A", Edition: "afr", CollectorNumber: "9", Language: "English"},
	}
	lines := Aggregate(rows)
	if lines[0].Identity.Set != "afr" {
		t.Errorf("expected afr first, got %s", lines[0].Identity.Set)
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", sampleCSV)

	fp1, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	fp2, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if fp1 != fp2 {
		t.Error("fingerprint should be deterministic")
	}

	writeCSV(t, dir, "a.csv", sampleCSV+"1,Extra Card,neo,99,English,,\n")
	fp3, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if fp3 == fp1 {
		t.Error("fingerprint should change when content changes")
	}

	b := writeCSV(t, dir, "b.csv", sampleCSV)
	fp4, err := Fingerprint([]string{a, b})
	if err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}
	if fp4 == fp3 {
		t.Error("fingerprint should change when the file set changes")
	}
}
