/*
file_test.go - Unit tests for the JSON file stores

Tests for:
- Missing files as empty/default state
- Full-rewrite round-trips across store instances
- History ordering regardless of insertion order
*/
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// STATE STORE TESTS
// =============================================================================

func TestStateStore_MissingFile_ZeroState(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "balance_state.json"))

	state, err := store.Load()

	require.NoError(t, err)
	assert.Nil(t, state.PreviousBalance)
	assert.Empty(t, state.LastProcessedIndex)
}

func TestStateStore_RoundTrip(t *testing.T) {
	// GIVEN: A saved state
	// WHEN: A fresh store instance loads the same file (simulated restart)
	// THEN: The state matches what was persisted

	path := filepath.Join(t.TempDir(), "balance_state.json")
	prev := decimal.RequireFromString("15.00")

	require.NoError(t, NewStateStore(path).Save(State{
		PreviousBalance:    &prev,
		LastProcessedIndex: "40001",
	}))

	state, err := NewStateStore(path).Load()

	require.NoError(t, err)
	require.NotNil(t, state.PreviousBalance)
	assert.Equal(t, "15.00", state.PreviousBalance.StringFixed(2))
	assert.Equal(t, "40001", state.LastProcessedIndex)
}

func TestStateStore_FileIsHumanReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance_state.json")
	prev := decimal.RequireFromString("12.5")

	require.NoError(t, NewStateStore(path).Save(State{PreviousBalance: &prev}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previousBalance")
	assert.Contains(t, string(data), "\n") // indented, not a single line
}

func TestStateStore_CorruptFile_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStateStore(path).Load()

	assert.Error(t, err)
}

// =============================================================================
// HISTORY STORE TESTS
// =============================================================================

func TestHistoryStore_MissingFile_EmptyNotNil(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "balance_logs.json"))

	entries, err := store.Load()

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryStore_AppendsSortedByDate(t *testing.T) {
	// GIVEN: Entries appended out of chronological order
	// WHEN: Loading
	// THEN: All entries come back sorted ascending by date

	store := NewHistoryStore(filepath.Join(t.TempDir(), "balance_logs.json"))

	dates := []string{
		"2025-03-12T10:00:00Z",
		"2025-03-10T10:00:00Z",
		"2025-03-11T10:00:00Z",
	}
	for i, d := range dates {
		require.NoError(t, store.Append(Entry{
			Phone:   "15400",
			Content: fmt.Sprintf("Saldo on: %d,00€", i+1),
			Date:    d,
		}))
	}

	entries, err := store.Load()

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2025-03-10T10:00:00Z", entries[0].Date)
	assert.Equal(t, "2025-03-11T10:00:00Z", entries[1].Date)
	assert.Equal(t, "2025-03-12T10:00:00Z", entries[2].Date)
}

func TestHistoryStore_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance_logs.json")

	wrote := NewHistoryStore(path)
	for i := 0; i < 5; i++ {
		require.NoError(t, wrote.Append(Entry{
			Phone:   "15400",
			Content: "Saldo on: 10,00€",
			Date:    fmt.Sprintf("2025-03-%02dT09:00:00Z", i+1),
		}))
	}

	entries, err := NewHistoryStore(path).Load()

	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestHistoryStore_FileIsAPlainJSONArray(t *testing.T) {
	// The history endpoint serves the file contents verbatim, so the
	// on-disk shape is part of the contract.
	path := filepath.Join(t.TempDir(), "balance_logs.json")
	store := NewHistoryStore(path)

	require.NoError(t, store.Append(Entry{
		Phone:   "15400",
		Content: "Saldo on: 10,00€",
		Date:    "2025-03-10T10:00:00Z",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "15400", raw[0]["phone"])
	assert.Equal(t, "2025-03-10T10:00:00Z", raw[0]["date"])
}
