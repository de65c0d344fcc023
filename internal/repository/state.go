package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SyncState is the watermark file next to the spreadsheet. It bounds the
// mail fetch window; per-application lastEmail remains the replay guard.
type SyncState struct {
	LastSync time.Time `json:"last_sync"`
}

// LoadState returns a zero state when the file is missing or unreadable; a
// broken watermark only widens the fetch window, it never blocks a sync.
func LoadState(path string) SyncState {
	var state SyncState
	data, err := os.ReadFile(path)
	if err != nil {
		return state
	}
	_ = json.Unmarshal(data, &state)
	return state
}

func SaveState(path string, state SyncState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
