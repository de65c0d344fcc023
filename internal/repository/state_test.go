package repository

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync_state.json")

	if got := LoadState(path); !got.LastSync.IsZero() {
		t.Fatalf("missing file should yield zero state, got %v", got.LastSync)
	}

	want := SyncState{LastSync: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	if err := SaveState(path, want); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if got := LoadState(path); !got.LastSync.Equal(want.LastSync) {
		t.Fatalf("LoadState = %v, want %v", got.LastSync, want.LastSync)
	}
}
