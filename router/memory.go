/*
memory.go - In-memory Client implementation (for testing/dev)

PURPOSE:
  A device stand-in that behaves like a router inbox without any network:
  seed messages, watch what gets sent, watch what gets deleted. Domain and
  API tests drive the whole workflow against this.

SEE ALSO:
  - client.go: The interface this satisfies
*/
package router

import (
	"context"
	"sort"
	"sync"
)

// OutboundSMS records one SendSMS call.
type OutboundSMS struct {
	Phones []string
	Body   string
}

// Memory is an in-memory Client implementation.
type Memory struct {
	mu      sync.Mutex
	inbox   []Message
	sent    []OutboundSMS
	deleted []string

	// Monitoring snapshots served by the stats methods.
	Traffic map[string]string
	Sig     map[string]string
	Info    map[string]string
}

// NewMemory creates an empty in-memory device.
func NewMemory() *Memory {
	return &Memory{
		Traffic: map[string]string{},
		Sig:     map[string]string{},
		Info:    map[string]string{},
	}
}

// Seed adds messages to the inbox.
func (m *Memory) Seed(msgs ...Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, msgs...)
}

// Sent returns every outbound SMS in send order.
func (m *Memory) Sent() []OutboundSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OutboundSMS(nil), m.sent...)
}

// Deleted returns the indexes deleted so far.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// SendSMS records the send and reports success.
func (m *Memory) SendSMS(_ context.Context, phones []string, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, OutboundSMS{Phones: append([]string(nil), phones...), Body: body})
	return "OK", nil
}

// ListInbox returns the seeded messages, newest first.
func (m *Memory) ListInbox(_ context.Context, _ int, _ BoxType, _ int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]Message(nil), m.inbox...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if out == nil {
		out = []Message{}
	}
	return out, nil
}

// DeleteSMS removes a message by index.
func (m *Memory) DeleteSMS(_ context.Context, index string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, index)
	kept := m.inbox[:0]
	for _, msg := range m.inbox {
		if msg.Index != index {
			kept = append(kept, msg)
		}
	}
	m.inbox = kept
	return nil
}

// TrafficStats returns the configured traffic snapshot.
func (m *Memory) TrafficStats(_ context.Context) (map[string]string, error) {
	return m.Traffic, nil
}

// Signal returns the configured signal snapshot.
func (m *Memory) Signal(_ context.Context) (map[string]string, error) {
	return m.Sig, nil
}

// DeviceInfo returns the configured device info snapshot.
func (m *Memory) DeviceInfo(_ context.Context) (map[string]string, error) {
	return m.Info, nil
}
