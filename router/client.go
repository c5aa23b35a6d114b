/*
Package router talks to the LTE router that holds the SIM card.

PURPOSE:
  The router exposes a small XML-over-HTTP web API: session handshake,
  SMS send/list/delete, and a few monitoring endpoints. Vendor client
  libraries model this as separate Connection/User/Sms/Monitoring
  objects all wrapping one session; here that collapses into a single
  narrow Client interface implemented by one adapter.

KEY CONCEPTS IN THIS FILE (client.go):
  - Client: the full capability set the rest of the system needs
  - Message: an inbox SMS as reported by the device
  - APIError: a device-reported error code

DESIGN PRINCIPLES:
  1. One session: the adapter lazily authenticates once and caches the
     session for all callers (see session.go)
  2. Narrow surface: callers never see cookies, tokens, or XML
  3. Passthrough stats: monitoring data stays opaque key/value pairs

SEE ALSO:
  - session.go: Session establishment and request plumbing
  - huawei.go: API operations over the session
*/
package router

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// CLIENT INTERFACE
// =============================================================================

// Client is the capability set the balance workflow needs from the device.
// Implementations must be safe for use from multiple goroutines.
type Client interface {
	// SendSMS sends one message to the given recipients and returns the
	// device's delivery result payload.
	SendSMS(ctx context.Context, phones []string, body string) (string, error)

	// ListInbox returns unread messages from the given box, newest first.
	// An empty inbox yields an empty slice, never nil.
	ListInbox(ctx context.Context, page int, box BoxType, count int) ([]Message, error)

	// DeleteSMS removes a message from the device inbox by index.
	DeleteSMS(ctx context.Context, index string) error

	// TrafficStats returns the device traffic counters as opaque key/value pairs.
	TrafficStats(ctx context.Context) (map[string]string, error)

	// Signal returns the current signal readings.
	Signal(ctx context.Context) (map[string]string, error)

	// DeviceInfo returns static device information.
	DeviceInfo(ctx context.Context) (map[string]string, error)
}

// =============================================================================
// TYPES
// =============================================================================

// BoxType selects which SMS storage box to read.
type BoxType int

const (
	LocalInbox  BoxType = 1
	LocalOutbox BoxType = 2
	SimInbox    BoxType = 3
	SimOutbox   BoxType = 4
)

// Message is an SMS as reported by the device inbox. The Index is the
// device-assigned identifier used for deletion and dedupe.
type Message struct {
	Index   string
	Phone   string
	Content string
	Date    time.Time
}

// =============================================================================
// ERRORS
// =============================================================================

// Device error codes that get special handling.
const (
	codeAlreadyLoggedIn = 108003
	codeSessionInvalid  = 125002
	codeTokenInvalid    = 125003
)

// APIError is an error reported by the device itself (as opposed to a
// transport failure reaching it).
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("device error %d", e.Code)
}
