package cache

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
)

func TestRoundTripBeforeAndAfterExpiry(t *testing.T) {
	m := NewManager(10 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	key := Key([]string{"b2", "b1"}, "thermal", map[string]float64{"supply_temp_c": 80})
	payload := json.RawMessage(`{"kpi":{"total_flow":1.25}}`)
	m.Put(key, payload)

	got, ok := m.Get(key)
	assert.Assert(t, ok)
	assert.Equal(t, string(got), string(payload))

	// Within TTL.
	now = now.Add(9 * time.Minute)
	_, ok = m.Get(key)
	assert.Assert(t, ok)

	// After TTL the same key reports a miss and the entry is dropped.
	now = now.Add(2 * time.Minute)
	_, ok = m.Get(key)
	assert.Assert(t, !ok)
	assert.Equal(t, m.Len(), 0)
}

func TestKeyIsOrderInsensitiveAndContentSensitive(t *testing.T) {
	a := Key([]string{"b1", "b2"}, "thermal", map[string]float64{"x": 1, "y": 2})
	b := Key([]string{"b2", "b1"}, "thermal", map[string]float64{"y": 2, "x": 1})
	assert.Equal(t, a, b)

	c := Key([]string{"b1", "b2"}, "thermal", map[string]float64{"x": 1, "y": 2.000001})
	assert.Assert(t, a != c)

	d := Key([]string{"b1", "b2"}, "electrical", map[string]float64{"x": 1, "y": 2})
	assert.Assert(t, a != d)
}

func TestClear(t *testing.T) {
	m := NewManager(0)
	m.Put("k", json.RawMessage(`{}`))
	assert.Equal(t, m.Len(), 1)
	m.Clear()
	_, ok := m.Get("k")
	assert.Assert(t, !ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	m := NewManager(0)
	now := time.Now()
	m.now = func() time.Time { return now }
	m.Put("k", json.RawMessage(`{}`))

	now = now.Add(1000 * time.Hour)
	_, ok := m.Get("k")
	assert.Assert(t, ok)
}

func TestLoadSkipsCorruptEntries(t *testing.T) {
	m := NewManager(0)
	err := m.Load([]Entry{
		{Key: "good", Timestamp: time.Now(), Payload: json.RawMessage(`{"ok":true}`)},
		{Key: "bad", Timestamp: time.Now(), Payload: json.RawMessage(`{"ok":`)},
	})

	var cerr *fault.CacheError
	assert.Assert(t, errors.As(err, &cerr))

	_, ok := m.Get("good")
	assert.Assert(t, ok)
	_, ok = m.Get("bad")
	assert.Assert(t, !ok)
}
