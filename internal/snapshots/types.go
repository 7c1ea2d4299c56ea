// Package snapshots exports saved mining runs to JSON files and restores
// them into a store.
package snapshots

import (
	"errors"
	"time"

	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/store"
)

// FormatVersion is written into every snapshot file.
const FormatVersion = 1

var (
	// ErrUnsupportedVersion is returned for snapshot files from a newer format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrRunExists is returned when restoring a run ID that is already stored.
	ErrRunExists = errors.New("run already exists")
)

// SnapshotData represents the JSON structure stored in snapshot files.
type SnapshotData struct {
	Version    int
	ExportedAt time.Time
	Run        store.Run
	Itemsets   []miner.ScoredItemset
	Rules      []miner.Rule
}

// Manager manages snapshot creation, restoration, and cleanup.
type Manager struct {
	store       *store.Store
	snapshotDir string
}

// New creates a new snapshot Manager.
func New(store *store.Store, snapshotDir string) *Manager {
	return &Manager{
		store:       store,
		snapshotDir: snapshotDir,
	}
}

// Dir returns the directory snapshots are written to.
func (m *Manager) Dir() string {
	return m.snapshotDir
}
