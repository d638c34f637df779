package rowkey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNewerEventSortsFirst(t *testing.T) {
	older := Encode("user_123", 100.0)
	newer := Encode("user_123", 200.0)

	// Newer events must compare lexicographically smaller so that a forward
	// prefix scan returns them first.
	assert.Equal(t, -1, bytes.Compare(newer, older))
}

func TestEncodeOrderingAcrossRealisticTimestamps(t *testing.T) {
	timestamps := []float64{
		0.0,
		1700000000.0,
		1700000000.001,
		1700000000.5,
		1700000001.0,
		2500000000.0,
	}

	for i := 0; i < len(timestamps)-1; i++ {
		earlier := Encode("u1", timestamps[i])
		later := Encode("u1", timestamps[i+1])
		assert.Equal(t, 1, bytes.Compare(earlier, later),
			"key for t=%f should sort after key for t=%f", timestamps[i], timestamps[i+1])
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode("user_42", 1712345678.9876)
	b := Encode("user_42", 1712345678.9876)
	assert.Equal(t, a, b)
}

func TestEncodeTruncatesToMilliseconds(t *testing.T) {
	// Sub-millisecond differences collapse to the same key.
	a := Encode("u1", 100.0001)
	b := Encode("u1", 100.0004)
	assert.Equal(t, a, b)

	// A full millisecond apart is distinct.
	c := Encode("u1", 100.001)
	assert.NotEqual(t, a, c)
}

func TestEncodeKeyShape(t *testing.T) {
	key := Encode("user_7", 1000.0)
	// sentinel 32503680000000 minus 1000*1000
	require.Equal(t, "user_7#32503679000000", string(key))
}

func TestEncodeNoClampingOutsideWindow(t *testing.T) {
	// Negative timestamps and timestamps beyond the sentinel still produce
	// keys; ordering is only guaranteed inside the window.
	neg := Encode("u1", -5.0)
	assert.Equal(t, "u1#32503680005000", string(neg))

	beyond := Encode("u1", 32503680001.0)
	assert.Equal(t, "u1#-1000", string(beyond))
}

func TestPrefixCoversUserKeys(t *testing.T) {
	prefix := Prefix("user_123")
	key := Encode("user_123", 1700000000.0)

	assert.True(t, bytes.HasPrefix(key, prefix))
	// The separator keeps one user's prefix from covering another user's keys.
	assert.False(t, bytes.HasPrefix(Encode("user_1234", 1700000000.0), prefix))
	assert.False(t, bytes.HasPrefix(Encode("user_12", 1700000000.0), prefix))
}
