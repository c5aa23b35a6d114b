/*
poller_test.go - Unit tests for the reconciliation loop

The inter-attempt delay is injected, so the whole retry budget runs
synchronously: tests count sleeps instead of waiting for them.
*/
package balance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/balance-gateway/router"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// scriptedDevice serves a different inbox snapshot per ListInbox call,
// falling back to its embedded Memory once the script runs out.
type scriptedDevice struct {
	*router.Memory
	script  [][]router.Message
	listErr error
	calls   int
}

func (d *scriptedDevice) ListInbox(ctx context.Context, page int, box router.BoxType, count int) ([]router.Message, error) {
	d.calls++
	if d.listErr != nil {
		return nil, d.listErr
	}
	if len(d.script) > 0 {
		next := d.script[0]
		d.script = d.script[1:]
		return next, nil
	}
	return d.Memory.ListInbox(ctx, page, box, count)
}

// instantPoller wires a poller with a no-op sleep and returns the sleep
// counter.
func instantPoller(client router.Client) (*Poller, *int) {
	sleeps := 0
	p := NewPoller(client)
	p.Sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}
	return p, &sleeps
}

func notification(index string, age time.Duration) router.Message {
	return router.Message{
		Index:   index,
		Phone:   "15400",
		Content: "Saldo on: 12,50€",
		Date:    time.Now().Add(-age),
	}
}

// =============================================================================
// RECONCILIATION LOOP TESTS
// =============================================================================

func TestPoller_NotificationPresent_FirstAttempt(t *testing.T) {
	// GIVEN: The inbox already holds a balance notification
	// WHEN: Waiting for one
	// THEN: It is returned on the first poll without sleeping

	device := router.NewMemory()
	device.Seed(notification("40001", 0))
	p, sleeps := instantPoller(device)

	msg, err := p.Wait(context.Background(), "", 5, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "40001", msg.Index)
	assert.Equal(t, 0, *sleeps)
}

func TestPoller_SkipsLastProcessedIndex(t *testing.T) {
	// GIVEN: The only notification in the inbox was already consumed
	// WHEN: Waiting with its index as lastProcessedIndex
	// THEN: The loop never returns it and exhausts the budget

	device := router.NewMemory()
	device.Seed(notification("40001", 0))
	p, _ := instantPoller(device)

	_, err := p.Wait(context.Background(), "40001", 3, time.Second)

	assert.ErrorIs(t, err, ErrNotReceived)
}

func TestPoller_NotificationArrivesOnLaterAttempt(t *testing.T) {
	// GIVEN: The notification lands in the inbox on the third poll
	// WHEN: Waiting with a budget of five attempts
	// THEN: It is returned after two sleeps

	device := &scriptedDevice{
		Memory: router.NewMemory(),
		script: [][]router.Message{
			{},
			{},
			{notification("40002", 0)},
		},
	}
	p, sleeps := instantPoller(device)

	msg, err := p.Wait(context.Background(), "", 5, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "40002", msg.Index)
	assert.Equal(t, 2, *sleeps)
	assert.Equal(t, 3, device.calls)
}

func TestPoller_IgnoresUnrelatedMessages(t *testing.T) {
	device := router.NewMemory()
	device.Seed(router.Message{Index: "1", Phone: "+358401111111", Content: "see you at 8", Date: time.Now()})
	p, _ := instantPoller(device)

	_, err := p.Wait(context.Background(), "", 2, time.Second)

	assert.ErrorIs(t, err, ErrNotReceived)
}

func TestPoller_BudgetExhausted_SleepsBetweenAttemptsOnly(t *testing.T) {
	// GIVEN: An empty inbox
	// WHEN: The budget of N attempts runs out
	// THEN: ErrNotReceived, with N polls and N-1 sleeps

	device := &scriptedDevice{Memory: router.NewMemory()}
	p, sleeps := instantPoller(device)

	_, err := p.Wait(context.Background(), "", 4, time.Second)

	assert.ErrorIs(t, err, ErrNotReceived)
	assert.Equal(t, 4, device.calls)
	assert.Equal(t, 3, *sleeps)
}

func TestPoller_DeviceError_PropagatesImmediately(t *testing.T) {
	deviceErr := errors.New("connection refused")
	device := &scriptedDevice{Memory: router.NewMemory(), listErr: deviceErr}
	p, sleeps := instantPoller(device)

	_, err := p.Wait(context.Background(), "", 5, time.Second)

	assert.ErrorIs(t, err, deviceErr)
	assert.Equal(t, 1, device.calls)
	assert.Equal(t, 0, *sleeps)
}

func TestPoller_CancelledContext_AbortsBetweenAttempts(t *testing.T) {
	// GIVEN: A context that is cancelled during the first sleep
	// THEN: The loop stops with the context error, not ErrNotReceived

	device := &scriptedDevice{Memory: router.NewMemory()}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(device)
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := p.Wait(ctx, "", 5, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, device.calls)
}
