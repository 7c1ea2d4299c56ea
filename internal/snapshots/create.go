package snapshots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CreateSnapshot writes the run with the given ID to <dir>/<id>.json and
// returns the file path. An existing file for the same run is overwritten.
func (m *Manager) CreateSnapshot(runID string) (string, error) {
	run, err := m.store.GetRun(runID)
	if err != nil {
		return "", fmt.Errorf("failed to get run: %w", err)
	}
	itemsets, err := m.store.GetRunItemsets(runID)
	if err != nil {
		return "", fmt.Errorf("failed to get itemsets for run %s: %w", runID, err)
	}
	rules, err := m.store.GetRunRules(runID)
	if err != nil {
		return "", fmt.Errorf("failed to get rules for run %s: %w", runID, err)
	}

	// Ensure snapshot directory exists
	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snapshotData := &SnapshotData{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		Run:        *run,
		Itemsets:   itemsets,
		Rules:      rules,
	}

	jsonData, err := json.MarshalIndent(snapshotData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	// Write via temp file + rename so a crash never leaves a partial snapshot
	snapshotPath := filepath.Join(m.snapshotDir, runID+".json")
	tmp := snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, snapshotPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return snapshotPath, nil
}

// ListSnapshots returns the snapshot files in the directory, sorted by name.
// A missing directory yields an empty list.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.snapshotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(m.snapshotDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// CleanupOldSnapshots removes snapshot files last modified before maxAge ago
// and returns how many were removed. Stored runs are left untouched.
func (m *Manager) CleanupOldSnapshots(maxAge time.Duration) (int, error) {
	paths, err := m.ListSnapshots()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to stat snapshot %s: %w", path, err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to delete snapshot file %s: %w", path, err)
		}
		deleted++
	}

	return deleted, nil
}
