// Package subscription implements the fixed-capacity subscription
// registry: a bounded array of active REQ subscriptions matched against
// incoming events by the broadcaster. No maps are used for the hot
// registry path, per the storage engine's arena-style design.
package subscription

import (
	"sync"

	"wisp.relay/pkg/encoders/filter"
)

const (
	// MaxSubscriptions is the total number of subscription slots across
	// all connections.
	MaxSubscriptions = 64
	// MaxPerConnection is the number of subscription slots a single
	// connection may occupy.
	MaxPerConnection = 8
	// MaxFiltersPerSubscription bounds the filter list of a single REQ.
	MaxFiltersPerSubscription = 4
)

// ConnID identifies a connection that owns subscriptions. Callers supply
// a stable, comparable value (e.g. a pointer or a monotonic counter).
type ConnID uint64

// entry is one occupied slot in the fixed registry.
type entry struct {
	used       bool
	conn       ConnID
	subID      string
	filters    filter.S
	eventsSent int
}

// Manager is the fixed-capacity subscription registry. The zero value is
// ready to use.
type Manager struct {
	mu    sync.Mutex
	slots [MaxSubscriptions]entry
}

// New constructs an empty subscription registry.
func New() *Manager {
	return &Manager{}
}

// ErrRegistryFull and friends are returned by Add to report why a
// subscription could not be registered.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrRegistryFull   Error = "subscription: registry is full"
	ErrConnectionFull Error = "subscription: connection has reached its subscription limit"
)

// Add registers a subscription for conn under subID, replacing any
// existing subscription with the same (conn, subID) pair, per NIP-01 REQ
// semantics (a repeated subscription id overwrites the old one). The
// filter list is deep-copied into the slot and clamped to
// MaxFiltersPerSubscription entries; the router rejects over-long lists
// before they reach here, so the clamp is a backstop, not a code path
// clients can observe.
func (m *Manager) Add(conn ConnID, subID string, filters filter.S) error {
	if len(filters) > MaxFiltersPerSubscription {
		filters = filters[:MaxFiltersPerSubscription]
	}
	filters = filters.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.find(conn, subID); ok {
		m.slots[i].filters = filters
		m.slots[i].eventsSent = 0
		return nil
	}

	if m.countForConn(conn) >= MaxPerConnection {
		return ErrConnectionFull
	}

	for i := range m.slots {
		if !m.slots[i].used {
			m.slots[i] = entry{used: true, conn: conn, subID: subID, filters: filters}
			return nil
		}
	}
	return ErrRegistryFull
}

// Remove deregisters a single subscription. It is a no-op if the
// subscription does not exist.
func (m *Manager) Remove(conn ConnID, subID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.find(conn, subID); ok {
		m.slots[i] = entry{}
	}
}

// RemoveAll deregisters every subscription owned by conn, called on
// connection close.
func (m *Manager) RemoveAll(conn ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].used && m.slots[i].conn == conn {
			m.slots[i] = entry{}
		}
	}
}

func (m *Manager) countForConn(conn ConnID) int {
	n := 0
	for i := range m.slots {
		if m.slots[i].used && m.slots[i].conn == conn {
			n++
		}
	}
	return n
}

// Count returns the number of occupied slots across the whole registry.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.slots {
		if m.slots[i].used {
			n++
		}
	}
	return n
}

// Match is a subscription matched against a broadcast event: the owning
// connection and the subscription id to deliver it under.
type Match struct {
	Conn  ConnID
	SubID string
}

// MatchEvent returns every (conn, subID) pair whose filters currently
// match a predicate, without holding the registry lock during delivery:
// callers should send after MatchEvent returns. Each matched slot's
// delivery counter is incremented here, on the assumption the caller
// goes on to send.
func (m *Manager) MatchEvent(matches func(filter.S) bool) []Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Match
	for i := range m.slots {
		if m.slots[i].used && matches(m.slots[i].filters) {
			m.slots[i].eventsSent++
			out = append(out, Match{Conn: m.slots[i].conn, SubID: m.slots[i].subID})
		}
	}
	return out
}

// EventsSent reports how many live events have been delivered to the
// given subscription since it was installed or last replaced.
func (m *Manager) EventsSent(conn ConnID, subID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.find(conn, subID); ok {
		return m.slots[i].eventsSent
	}
	return 0
}

func (m *Manager) find(conn ConnID, subID string) (int, bool) {
	for i := range m.slots {
		if m.slots[i].used && m.slots[i].conn == conn && m.slots[i].subID == subID {
			return i, true
		}
	}
	return 0, false
}
