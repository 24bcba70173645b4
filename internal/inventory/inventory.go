// Package inventory reads collection export CSVs (Moxfield column layout),
// aggregates rows into distinct printings, and fingerprints the input so the
// run orchestrator can detect inventory changes.
package inventory

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// RequiredColumns are the CSV columns the watcher cannot run without.
var RequiredColumns = []string{"Count", "Name", "Edition", "Collector Number", "Language", "Foil"}

// Row is one raw CSV row after header mapping.
type Row struct {
	Count           int
	Name            string
	Edition         string
	CollectorNumber string
	Language        string
	Foil            string
	Proxy           bool
	Source          string
}

// Line is one aggregated printing: a normalized identity, the display name
// from the first row that produced it, and the summed quantity.
type Line struct {
	Identity models.PrintingIdentity
	Name     string
	Quantity int
}

// ReadCSVs reads and concatenates every file in paths. A missing file or a
// file missing required columns is fatal: the error enumerates expected vs
// found columns so a broken export is obvious.
func ReadCSVs(paths []string) ([]Row, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files provided")
	}
	var rows []Row
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("CSV not found: %s", p)
		}
		fileRows, err := parseCSV(f, p)
		f.Close()
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

func parseCSV(r io.Reader, source string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header from %s: %w", source, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV %s missing columns: %v (found: %v)", source, missing, headerNames(header))
	}

	proxyIdx, hasProxy := cols["Proxy"]

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row from %s: %w", source, err)
		}

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		count, _ := strconv.Atoi(strings.TrimSpace(field("Count")))
		row := Row{
			Count:           count,
			Name:            strings.TrimSpace(field("Name")),
			Edition:         field("Edition"),
			CollectorNumber: field("Collector Number"),
			Language:        field("Language"),
			Foil:            field("Foil"),
			Source:          source,
		}
		if hasProxy && proxyIdx < len(record) {
			row.Proxy = strings.EqualFold(strings.TrimSpace(record[proxyIdx]), "true")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerNames(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// Aggregate groups rows by normalized printing identity, summing quantities.
// Proxy rows are dropped. Each distinct printing comes out exactly once, in
// stable identity order, so one remote lookup covers all copies.
func Aggregate(rows []Row) []Line {
	byIdentity := make(map[models.PrintingIdentity]*Line)
	for _, r := range rows {
		if r.Proxy {
			continue
		}
		id := models.NewPrintingIdentity(r.Edition, r.CollectorNumber, r.Language, r.Foil)
		if line, ok := byIdentity[id]; ok {
			line.Quantity += r.Count
			continue
		}
		byIdentity[id] = &Line{Identity: id, Name: r.Name, Quantity: r.Count}
	}

	lines := make([]Line, 0, len(byIdentity))
	for _, l := range byIdentity {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Identity.Less(lines[j].Identity) })
	return lines
}

// Fingerprint hashes the inventory definition: per-file content hashes, tied
// to their paths, combined in argument order. Any change to the files (or
// the set of files) changes the fingerprint; price movements do not.
func Fingerprint(paths []string) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		h, err := fileSHA256(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, p+":"+h)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:]), nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
