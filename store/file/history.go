/*
history.go - Append-only history of consumed balance notifications

PURPOSE:
  Every consumed notification is logged once: phone, raw text, and the
  message timestamp in ISO-8601. The file is a single JSON array kept
  sorted by date ascending so it reads chronologically.

WRITE PATH:
  Append is read-modify-write: load the existing array (missing file is
  an empty array), append the new entry, re-sort, rewrite in full.
  Entries are never mutated or deleted.

SEE ALSO:
  - state.go: Package doc and the companion state store
*/
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// Entry is one consumed balance notification.
type Entry struct {
	Phone   string `json:"phone"`
	Content string `json:"content"`
	Date    string `json:"date"` // ISO-8601 (RFC 3339)
}

// HistoryStore persists Entry records to one JSON array file.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// NewHistoryStore creates a store at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Load returns all entries, oldest first. A missing file yields an empty
// slice.
func (s *HistoryStore) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Append adds one entry and rewrites the file sorted by date ascending.
func (s *HistoryStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	sortByDate(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *HistoryStore) loadLocked() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// sortByDate orders entries ascending. Dates are RFC 3339, so the
// lexicographic order is the chronological order.
func sortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
}
