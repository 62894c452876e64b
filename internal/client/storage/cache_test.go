package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEntry_Live(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute

	entry, err := NewCachedEntry("value", ttl, base)
	require.NoError(t, err)

	// Just inside the ttl the entry is live, just past it it is not.
	assert.True(t, entry.Live(base.Add(ttl-time.Millisecond)))
	assert.False(t, entry.Live(base.Add(ttl)))
	assert.False(t, entry.Live(base.Add(ttl+time.Millisecond)))
}

func TestCachedEntry_NoTTLNeverExpires(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entry, err := NewCachedEntry("value", 0, base)
	require.NoError(t, err)

	assert.True(t, entry.Live(base.Add(100*365*24*time.Hour)))
}

func TestCachedEntry_Decode(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	entry, err := NewCachedEntry(payload{Name: "bola de fogo", Count: 3}, 0, time.Now())
	require.NoError(t, err)

	var got payload
	require.NoError(t, entry.Decode(&got))
	assert.Equal(t, "bola de fogo", got.Name)
	assert.Equal(t, 3, got.Count)
}
