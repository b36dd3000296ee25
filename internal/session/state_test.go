package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := SaveState(path, State{ActiveCVID: "cv-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, err := LoadState(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ActiveCVID != "cv-1" {
		t.Fatalf("expected cv-1, got %q", st.ActiveCVID)
	}
}

func TestLoadStateMissingFileIsEmpty(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("a missing state file must not be an error, got %v", err)
	}
	if st.ActiveCVID != "" {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestLoadStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadState(path); err == nil {
		t.Fatal("expected an error for a corrupt state file")
	}
}

func TestClearStateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := SaveState(path, State{ActiveCVID: "cv-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ClearState(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ClearState(path); err != nil {
		t.Fatalf("clearing twice must not fail: %v", err)
	}

	st, err := LoadState(path)
	if err != nil || st.ActiveCVID != "" {
		t.Fatalf("expected empty state after clear, got %+v (%v)", st, err)
	}
}
