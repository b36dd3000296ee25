package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultStateFile is where the persisted selection lives when the
// configuration does not name another path.
const DefaultStateFile = "talentlink.state.json"

// State is the slice of the session that outlives one invocation. The
// active-CV selection has to survive the process, or a `cv select` could
// never influence a later `apply`.
type State struct {
	ActiveCVID string `json:"active_cv_id,omitempty"`
}

// LoadState reads the persisted state. A missing file is an empty state,
// not an error.
func LoadState(path string) (State, error) {
	var st State

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("reading session state %q: %w", path, err)
	}

	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing session state %q: %w", path, err)
	}

	return st, nil
}

func SaveState(path string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session state %q: %w", path, err)
	}

	return nil
}

// ClearState removes the persisted state. Clearing an absent state is a
// no-op.
func ClearState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing session state %q: %w", path, err)
	}
	return nil
}
