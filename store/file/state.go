/*
Package file provides the JSON file stores backing the balance workflow.

PURPOSE:
  Two small, human-readable stores in the working directory:
  - StateStore: one record holding the last known balance and the index
    of the last consumed message (state.go)
  - HistoryStore: an append-only log of consumed notifications (history.go)

SEMANTICS:
  Load-at-startup, write-after-mutation. A missing file is empty/default
  state, never an error. Writes rewrite the whole file; there is no
  versioning or migration. Both stores are mutex-guarded so in-process
  callers cannot interleave writes. Nothing guards against a crash
  mid-write; acceptable for this write frequency.

SEE ALSO:
  - balance/tracker.go: The only writer of both stores
*/
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE STATE STORE
// =============================================================================

// State is the single persisted balance record. PreviousBalance is nil
// until the first notification has been consumed.
type State struct {
	PreviousBalance    *decimal.Decimal `json:"previousBalance"`
	LastProcessedIndex string           `json:"lastProcessedIndex,omitempty"`
}

// StateStore persists the State record to one JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a store at path. Nothing is read until Load.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load reads the persisted state. A missing file yields the zero state.
func (s *StateStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load balance state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("load balance state: %w", err)
	}
	return state, nil
}

// Save rewrites the state file in full.
func (s *StateStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("save balance state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save balance state: %w", err)
	}
	return nil
}
