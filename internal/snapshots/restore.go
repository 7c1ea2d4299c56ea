package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/ruleminer/internal/store"
)

// RestoreSnapshot saves the run recorded in the snapshot file at path,
// keeping its original ID, and returns that ID.
func (m *Manager) RestoreSnapshot(path string) (string, error) {
	snapshotData, err := loadSnapshotFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot file: %w", err)
	}

	if snapshotData.Version > FormatVersion {
		return "", fmt.Errorf("%w: %d (newest supported is %d)",
			ErrUnsupportedVersion, snapshotData.Version, FormatVersion)
	}

	id := snapshotData.Run.ID
	if id != "" {
		_, err := m.store.GetRun(id)
		switch {
		case err == nil:
			return "", fmt.Errorf("%w: %s", ErrRunExists, id)
		case !errors.Is(err, store.ErrRunNotFound):
			return "", err
		}
	}

	res := &store.RunResult{
		Run:      snapshotData.Run,
		Itemsets: snapshotData.Itemsets,
		Rules:    snapshotData.Rules,
	}
	return m.store.SaveRun(res)
}

// loadSnapshotFile reads and parses a snapshot JSON file.
func loadSnapshotFile(path string) (*SnapshotData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshotData SnapshotData
	if err := json.Unmarshal(data, &snapshotData); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return &snapshotData, nil
}
