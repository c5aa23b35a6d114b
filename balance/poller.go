/*
poller.go - Bounded polling for the asynchronous balance notification

PURPOSE:
  The carrier delivers the balance SMS with unknown latency after the
  trigger is sent. This loop trades a bounded wall-clock wait for
  certainty: poll the inbox, skip anything already consumed, and stop as
  soon as an unseen notification appears or the attempt budget runs out.

STATE MACHINE (per attempt):
  1. Poll the inbox (first page, local inbox)
  2. Filter out the last-consumed message index
  3. Return the first remaining notification-looking message
  4. Otherwise sleep the inter-attempt delay and try again
  5. Budget exhausted: ErrNotReceived

ERROR SEMANTICS:
  ErrNotReceived is an expected outcome, not a fault: the SMS simply has
  not arrived yet and the caller should try again later. Device errors
  during a poll propagate immediately.

TESTABILITY:
  The inter-attempt delay is an injected function. Tests substitute an
  instant no-op and drive the loop synchronously.

SEE ALSO:
  - tracker.go: Runs this loop as step one of the consume workflow
  - router/huawei.go: ListInbox implementation
*/
package balance

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/warp/balance-gateway/router"
)

// ErrNotReceived is returned when the retry budget runs out before a new
// balance notification appears. Callers should treat it as "try again
// later", not a permanent failure.
var ErrNotReceived = errors.New("balance notification not received")

// inboxPageSize is how many messages each poll reads from the device.
const inboxPageSize = 50

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller waits for an unseen balance notification to arrive in the inbox.
type Poller struct {
	Client router.Client

	// Sleep is the inter-attempt wait. Defaults to a context-aware
	// time.After wait; tests inject a no-op.
	Sleep SleepFunc
}

// NewPoller creates a poller over the given device client.
func NewPoller(client router.Client) *Poller {
	return &Poller{Client: client, Sleep: waitSleep}
}

// Wait polls until a balance notification with an index different from
// lastIndex shows up, making at most attempts polls separated by delay.
func (p *Poller) Wait(ctx context.Context, lastIndex string, attempts int, delay time.Duration) (router.Message, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitSleep
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		messages, err := p.Client.ListInbox(ctx, 1, router.LocalInbox, inboxPageSize)
		if err != nil {
			return router.Message{}, err
		}

		for _, msg := range messages {
			if lastIndex != "" && msg.Index == lastIndex {
				continue
			}
			if IsNotification(msg.Content) {
				return msg, nil
			}
		}

		if attempt == attempts {
			break
		}
		log.Printf("[Poller] Attempt %d/%d: no balance notification yet, retrying in %v", attempt, attempts, delay)
		if err := sleep(ctx, delay); err != nil {
			return router.Message{}, err
		}
	}

	return router.Message{}, ErrNotReceived
}

func waitSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
