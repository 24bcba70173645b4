// Package store persists the watcher's two state documents: the last-run
// price snapshot and the rolling trend history. Loads never fail; absent,
// empty, or corrupt files are treated as first-run state so a bad write can
// never wedge the watcher.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ewhitmore/mtg-price-watch/internal/models"
)

// SnapshotStore reads and replaces the last-prices document.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Load returns the previous snapshot, or an empty one when no usable prior
// state exists.
func (s *SnapshotStore) Load() models.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return models.NewSnapshot()
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.NewSnapshot()
	}
	if snap.Cards == nil {
		snap.Cards = make(map[models.PrintingIdentity]models.PriceRecord)
	}
	return snap
}

// Save replaces the snapshot wholesale. The write goes to a temp file first
// and is renamed into place, so a concurrent reader never sees a partial
// document.
func (s *SnapshotStore) Save(snap models.Snapshot) error {
	return writeJSON(s.path, snap)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
