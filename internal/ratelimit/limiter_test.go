package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowKey(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	key := windowKey("lib1", now, time.Minute)
	assert.Equal(t, "ratelimit:lib1:28333333", key)

	// Same window, same key.
	assert.Equal(t, key, windowKey("lib1", now.Add(30*time.Second), time.Minute))

	// Next window rolls over.
	assert.NotEqual(t, key, windowKey("lib1", now.Add(time.Minute), time.Minute))

	// Different callers never share a bucket.
	assert.NotEqual(t, key, windowKey("lib2", now, time.Minute))
}

func TestNoopLimiter(t *testing.T) {
	ok, err := NoopLimiter{}.Allow(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}
