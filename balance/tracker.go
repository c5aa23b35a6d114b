/*
tracker.go - Balance state owner and consume workflow

PURPOSE:
  The Tracker owns the process-wide balance state (previous balance +
  last consumed message index), loads it from disk at startup, and runs
  the workflow that turns a polled notification into a consumed one:

    poll -> extract -> compute spent -> persist state
         -> append history (best effort) -> delete from device (best effort)

ERROR SEMANTICS:
  - Poll exhaustion propagates ErrNotReceived (expected outcome)
  - A matched message that fails numeric extraction is ErrInconsistent:
    the carrier changed its format and somebody should look at it
  - A failed state write aborts the operation, but the in-memory state
    keeps the update (the next consume builds on it; the write is retried
    then)
  - History append and device delete failures are logged and swallowed

SPENT CALCULATION:
  spent = previous - current, only when the balance strictly decreased.
  Equal or increased balances report spent = 0; a top-up is not "spend".

CONCURRENCY:
  One mutex serializes all state-mutating operations. There is exactly
  one device session behind the client, so overlapping consume workflows
  would race on both state and inbox.

SEE ALSO:
  - poller.go: Step one of the workflow
  - store/file: State and history persistence
  - api/handlers.go: The HTTP callers
*/
package balance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/balance-gateway/router"
	"github.com/warp/balance-gateway/store/file"
)

// ErrInconsistent is returned when a message matches the notification
// pattern but its amount does not parse. This indicates a carrier format
// change, not a delivery delay.
var ErrInconsistent = errors.New("balance notification did not parse")

// Info is the outcome of one consumed notification.
type Info struct {
	Current  decimal.Decimal
	Previous *decimal.Decimal // nil when this was the first reading
	Spent    decimal.Decimal
}

// Tracker coordinates polling, parsing, and persistence around the single
// balance state record.
type Tracker struct {
	client  router.Client
	poller  *Poller
	states  *file.StateStore
	history *file.HistoryStore

	mu    sync.Mutex
	state file.State
}

// NewTracker builds a tracker and loads the persisted state.
func NewTracker(client router.Client, poller *Poller, states *file.StateStore, history *file.HistoryStore) (*Tracker, error) {
	state, err := states.Load()
	if err != nil {
		return nil, err
	}
	return &Tracker{
		client:  client,
		poller:  poller,
		states:  states,
		history: history,
		state:   state,
	}, nil
}

// PreviousBalance returns the last persisted balance, or nil if none is
// known yet.
func (t *Tracker) PreviousBalance() *decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.PreviousBalance == nil {
		return nil
	}
	v := *t.state.PreviousBalance
	return &v
}

// EnsureBaseline makes sure a previous balance exists, running the polling
// loop to establish one if needed. Returns the (possibly just established)
// balance.
func (t *Tracker) EnsureBaseline(ctx context.Context, attempts int, delay time.Duration) (decimal.Decimal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.PreviousBalance != nil {
		return *t.state.PreviousBalance, nil
	}

	msg, err := t.poller.Wait(ctx, t.state.LastProcessedIndex, attempts, delay)
	if err != nil {
		return decimal.Decimal{}, err
	}

	baseline, ok := Extract(msg.Content)
	if !ok {
		t.state.LastProcessedIndex = msg.Index
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInconsistent, msg.Content)
	}

	t.state.PreviousBalance = &baseline
	t.state.LastProcessedIndex = msg.Index
	if err := t.states.Save(t.state); err != nil {
		log.Printf("[Tracker] Failed to persist baseline: %v", err)
		return decimal.Decimal{}, err
	}

	log.Printf("[Tracker] Baseline balance: %s", baseline.StringFixed(2))
	return baseline, nil
}

// Consume runs the full workflow: wait for an unseen notification, parse
// it, update and persist state, log it to history, and delete it from the
// device.
func (t *Tracker) Consume(ctx context.Context, attempts int, delay time.Duration) (Info, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg, err := t.poller.Wait(ctx, t.state.LastProcessedIndex, attempts, delay)
	if err != nil {
		return Info{}, err
	}

	// The message is marked consumed in memory as soon as it matches, so a
	// malformed notification is not re-consumed on the next poll. The
	// persisted record only ever advances on a successful parse.
	current, ok := Extract(msg.Content)
	if !ok {
		t.state.LastProcessedIndex = msg.Index
		return Info{}, fmt.Errorf("%w: %q", ErrInconsistent, msg.Content)
	}

	previous := t.state.PreviousBalance
	spent := decimal.Zero
	if previous != nil && current.LessThan(*previous) {
		spent = previous.Sub(current)
	}

	cur := current
	t.state.PreviousBalance = &cur
	t.state.LastProcessedIndex = msg.Index
	if err := t.states.Save(t.state); err != nil {
		log.Printf("[Tracker] Failed to persist balance state: %v", err)
		return Info{}, err
	}

	if err := t.history.Append(file.Entry{
		Phone:   msg.Phone,
		Content: msg.Content,
		Date:    msg.Date.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("[Tracker] Failed to append history: %v", err)
	}

	if err := t.client.DeleteSMS(ctx, msg.Index); err != nil {
		log.Printf("[Tracker] Failed to delete message %s: %v", msg.Index, err)
	} else {
		log.Printf("[Tracker] Deleted consumed message %s", msg.Index)
	}

	return Info{Current: current, Previous: previous, Spent: spent}, nil
}

// OneShot scans the current inbox once, without retries and without
// touching the balance state. A parsed notification is deleted from the
// device; the parsed amount is returned. The second return value is false
// when no parsable notification is present.
func (t *Tracker) OneShot(ctx context.Context) (decimal.Decimal, bool, error) {
	messages, err := t.client.ListInbox(ctx, 1, router.LocalInbox, inboxPageSize)
	if err != nil {
		return decimal.Decimal{}, false, err
	}

	for _, msg := range messages {
		if !IsNotification(msg.Content) {
			continue
		}
		bal, ok := Extract(msg.Content)
		if !ok {
			continue
		}
		if err := t.client.DeleteSMS(ctx, msg.Index); err != nil {
			log.Printf("[Tracker] Failed to delete message %s: %v", msg.Index, err)
		}
		return bal, true, nil
	}

	return decimal.Decimal{}, false, nil
}
