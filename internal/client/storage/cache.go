package storage

import (
	"encoding/json"
	"time"
)

// CachedEntry wraps a persisted value with the time it was written and an
// optional time-to-live. A zero TTL means the entry never expires.
type CachedEntry struct {
	CachedAt time.Time       `json:"cached_at"`
	TTL      time.Duration   `json:"ttl,omitempty"`
	Value    json.RawMessage `json:"value"`
}

// NewCachedEntry marshals value into a fresh envelope.
func NewCachedEntry(value any, ttl time.Duration, now time.Time) (*CachedEntry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &CachedEntry{CachedAt: now, TTL: ttl, Value: raw}, nil
}

// Live reports whether the entry is still valid at the given time. Expired
// entries must never be returned by a read, even if physically present.
func (e *CachedEntry) Live(now time.Time) bool {
	if e.TTL == 0 {
		return true
	}
	return now.Sub(e.CachedAt) < e.TTL
}

// Decode unmarshals the wrapped value into out.
func (e *CachedEntry) Decode(out any) error {
	return json.Unmarshal(e.Value, out)
}
