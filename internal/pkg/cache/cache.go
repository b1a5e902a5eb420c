// Package cache holds content-addressed simulation results with lazy TTL
// invalidation. The manager replaces the process-wide caches the legacy
// scripts relied on: construct one with a TTL and pass it by reference.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
)

// Entry is one stored result. Entries are read-only after creation; an
// entry older than the manager TTL is treated as absent.
type Entry struct {
	Key       string          `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Manager is a TTL cache safe for concurrent use. Writes to the same key
// are idempotent by construction: the key is a content hash, so concurrent
// writers store equal values and last-writer-wins is correct.
type Manager struct {
	mux     sync.RWMutex
	ttl     time.Duration
	entries map[string]Entry
	now     func() time.Time
}

// NewManager returns a Manager with the given TTL. A non-positive TTL
// means entries never expire.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the payload stored under key if present and younger than the
// TTL. Expired entries are dropped lazily on access.
func (m *Manager) Get(key string) (json.RawMessage, bool) {
	m.mux.RLock()
	entry, ok := m.entries[key]
	m.mux.RUnlock()
	if !ok {
		return nil, false
	}
	if m.expired(entry) {
		m.mux.Lock()
		if e, ok := m.entries[key]; ok && m.expired(e) {
			delete(m.entries, key)
		}
		m.mux.Unlock()
		return nil, false
	}
	return entry.Payload, true
}

// Put stores payload under key, overwriting any earlier entry.
func (m *Manager) Put(key string, payload json.RawMessage) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.entries[key] = Entry{Key: key, Timestamp: m.now(), Payload: payload}
}

// Clear drops every entry.
func (m *Manager) Clear() {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.entries = make(map[string]Entry)
}

// Len returns the number of stored entries, expired or not.
func (m *Manager) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.entries)
}

// Load restores previously serialized entries, for example read back from a
// persistence handler. A corrupt entry yields a CacheError and is skipped;
// corruption never aborts a run, it only degrades to a miss.
func (m *Manager) Load(entries []Entry) error {
	var firstErr error
	m.mux.Lock()
	defer m.mux.Unlock()
	for _, e := range entries {
		if e.Key == "" || !json.Valid(e.Payload) {
			if firstErr == nil {
				firstErr = &fault.CacheError{Key: e.Key, Cause: fmt.Errorf("malformed entry")}
			}
			continue
		}
		m.entries[e.Key] = e
	}
	return firstErr
}

func (m *Manager) expired(e Entry) bool {
	return m.ttl > 0 && m.now().Sub(e.Timestamp) >= m.ttl
}

// Key computes the content hash of a scenario: the sorted participating
// building ids, the scenario kind, and the normalized parameter set.
func Key(buildingIDs []string, kind string, params map[string]float64) string {
	ids := append([]string(nil), buildingIDs...)
	sort.Strings(ids)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.Join(ids, ","))
	b.WriteString("|")
	b.WriteString(kind)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%.6f", name, params[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
