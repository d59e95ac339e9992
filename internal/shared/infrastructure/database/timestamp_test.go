package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	t.Run("time value", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan(want))
		assert.True(t, ts.Valid)
		assert.True(t, want.Equal(ts.Time))
	})

	t.Run("rfc3339 text", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan("2026-03-02T09:30:00Z"))
		assert.True(t, want.Equal(ts.Time))
	})

	t.Run("sqlite text bytes", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan([]byte("2026-03-02 09:30:00+00:00")))
		assert.True(t, want.Equal(ts.Time))
	})

	t.Run("null", func(t *testing.T) {
		ts := Timestamp{Time: want, Valid: true}
		require.NoError(t, ts.Scan(nil))
		assert.False(t, ts.Valid)
		assert.Nil(t, ts.Ptr())
	})

	t.Run("garbage", func(t *testing.T) {
		var ts Timestamp
		assert.Error(t, ts.Scan("yesterday"))
		assert.Error(t, ts.Scan(42))
	})
}

func TestNullableTime(t *testing.T) {
	assert.Nil(t, NullableTime(nil))
	now := time.Now()
	assert.Equal(t, now.UTC(), NullableTime(&now))
}
