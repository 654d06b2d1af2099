package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The weak tier only runs when the entropy source fails, so its collision
// behavior is pinned directly: even with the clock frozen to a single instant,
// the random component must keep a large batch of ids distinct.
func TestFallbackID_NoCollisionsWithinOneTick(t *testing.T) {
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return frozen }
	defer func() { timeNow = orig }()

	seen := make(map[string]struct{}, 100_000)
	for i := 0; i < 100_000; i++ {
		id := fallbackID()
		_, dup := seen[id]
		require.False(t, dup, "collision after %d ids", i)
		seen[id] = struct{}{}
	}
}

func TestNewID_Prefixing(t *testing.T) {
	id := NewID("chat")
	assert.Regexp(t, `^chat_`, id)
	assert.Greater(t, len(id), len("chat_")+10)
}
