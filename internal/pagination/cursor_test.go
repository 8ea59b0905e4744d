package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC)

	encoded := EncodeCursor("prompt-42", ts)
	require.NotEmpty(t, encoded)

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "prompt-42", cursor.LastID)
	assert.True(t, cursor.Timestamp.Equal(ts))
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("")

	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "%%%"},
		{name: "missing separator", cursor: "bm8gc2VwYXJhdG9y"},
		{name: "bad timestamp", cursor: "aWQtMXxub3QtYS10aW1l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeCursor(tt.cursor)
			assert.Nil(t, cursor)
			assert.Equal(t, ErrInvalidCursor, err)
		})
	}
}

func TestEncodeCursorEmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 42, ClampLimit(42))
	assert.Equal(t, MaxLimit, ClampLimit(5000))
}

func TestTrim(t *testing.T) {
	items := []string{"a", "b", "c"}

	page, hasMore := Trim(items, 2)
	assert.Equal(t, []string{"a", "b"}, page)
	assert.True(t, hasMore)

	page, hasMore = Trim(items, 3)
	assert.Equal(t, items, page)
	assert.False(t, hasMore)

	page, hasMore = Trim([]string{}, 3)
	assert.Empty(t, page)
	assert.False(t, hasMore)
}
