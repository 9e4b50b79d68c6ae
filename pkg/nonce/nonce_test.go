// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package nonce

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContext = [ContextSize]byte{'T', 'E', 'S', 'T'}

func TestMonotonic(t *testing.T) {
	n := NewMonotonic(testContext, 0)

	assert.Equal(t, "544553540000000000000000", n.Hex())
	assert.Equal(t, KindMonotonic, n.Kind())
	assert.Equal(t, testContext, n.Context())
	assert.True(t, n.ValidateContext(testContext))
	assert.Equal(t, uint64(0), n.Counter())

	require.NoError(t, n.Next())

	assert.Equal(t, "544553540000000000000001", n.Hex())
	assert.True(t, n.ValidateContext(testContext))
	assert.Equal(t, uint64(1), n.Counter())
}

func TestMonotonicRotation(t *testing.T) {
	n := NewMonotonic(testContext, 0)
	require.NoError(t, n.NeedsRotation())
	require.NoError(t, n.Next())

	n = NewMonotonic(testContext, math.MaxUint64)
	assert.ErrorIs(t, n.NeedsRotation(), ErrCounterExpired)
	assert.ErrorIs(t, n.Next(), ErrCounterExpired)
	// A refused advance leaves the bytes untouched.
	assert.Equal(t, uint64(math.MaxUint64), n.Counter())

	// Exactly half the range is still usable; one past it is not.
	n = NewMonotonic(testContext, math.MaxUint64/2)
	require.NoError(t, n.Next())
	assert.ErrorIs(t, n.Next(), ErrCounterExpired)
}

func TestMonotonicSetCounter(t *testing.T) {
	n := NewMonotonic(testContext, 7)
	n.SetCounter(42)
	assert.Equal(t, uint64(42), n.Counter())
	assert.Equal(t, testContext, n.Context())
}

func TestMonotonicTimestamp(t *testing.T) {
	n := NewMonotonicTimestamp(testContext, 0, Microseconds)

	assert.Equal(t, KindMonotonicTimestamp, n.Kind())
	assert.Equal(t, Microseconds, n.Granularity())
	assert.Equal(t, uint32(0), n.Counter())
	assert.True(t, n.ValidateContext(testContext))

	time.Sleep(time.Millisecond)
	before := n.TimestampNum()
	assert.NotZero(t, before)

	require.NoError(t, n.Next())
	assert.Equal(t, uint32(1), n.Counter())

	time.Sleep(time.Millisecond)
	assert.Greater(t, n.TimestampNum(), before)
}

func TestMonotonicTimestampRotation(t *testing.T) {
	n := NewMonotonicTimestamp(testContext, math.MaxUint32, Microseconds)
	assert.ErrorIs(t, n.Next(), ErrCounterExpired)

	// A nonce rebuilt with a creation epoch past the lifetime refuses
	// to advance. Microsecond granularity keeps the test clock real:
	// 4e9 microseconds is about 67 minutes.
	old := time.Now().Add(-70 * time.Minute)
	var b [Size]byte
	copy(b[:ContextSize], testContext[:])
	stale := MonotonicTimestampFromBytes(b, uint64(old.UnixMicro()), Microseconds)
	assert.ErrorIs(t, stale.Next(), ErrTimestampExpired)
	assert.ErrorIs(t, stale.NeedsRotation(), ErrTimestampExpired)
}

func TestRandomTimestamp(t *testing.T) {
	n, err := NewRandomTimestamp(testContext, Microseconds)
	require.NoError(t, err)

	assert.Equal(t, KindRandomTimestamp, n.Kind())
	assert.True(t, n.ValidateContext(testContext))

	first := n.Random()
	require.NoError(t, n.Next())
	// Four random bytes colliding across one advance is a 1 in 2^32
	// event; treat it as a failure.
	assert.NotEqual(t, first, n.Random())

	old := time.Now().Add(-70 * time.Minute)
	var b [Size]byte
	copy(b[:ContextSize], testContext[:])
	stale := RandomTimestampFromBytes(b, uint64(old.UnixMicro()), Microseconds)
	assert.ErrorIs(t, stale.Next(), ErrTimestampExpired)
}

func TestFromBytesRestoresAge(t *testing.T) {
	n := NewMonotonic(testContext, 42)
	rebuilt := MonotonicFromBytes(n.Bytes(), uint64(n.CreatedAt().UnixMicro()))

	assert.True(t, rebuilt.ValidateContext(testContext))
	assert.Equal(t, uint64(42), rebuilt.Counter())
	assert.Equal(t, n.CreatedAt().UnixMicro(), rebuilt.CreatedAt().UnixMicro())

	ts := NewMonotonicTimestamp(testContext, 42, Milliseconds)
	rebuiltTS := MonotonicTimestampFromBytes(ts.Bytes(), uint64(ts.CreatedAt().UnixMicro()), Milliseconds)
	assert.Equal(t, uint32(42), rebuiltTS.Counter())
	assert.Equal(t, ts.Timestamp(), rebuiltTS.Timestamp())
}

func TestClone(t *testing.T) {
	n := NewMonotonic(testContext, 0)
	c := n.Clone().(*Monotonic)

	require.NoError(t, n.Next())
	assert.Equal(t, uint64(1), n.Counter())
	assert.Equal(t, uint64(0), c.Counter())
}

func TestIsFresh(t *testing.T) {
	n := NewMonotonicTimestamp(testContext, 0, Microseconds)
	// The stamp was just written; any generous bound holds.
	assert.True(t, n.IsFresh(1_000_000))

	old := time.Now().Add(-time.Minute)
	var b [Size]byte
	copy(b[:ContextSize], testContext[:])
	stale := MonotonicTimestampFromBytes(b, uint64(old.UnixMicro()), Microseconds)
	// Stamped value is zero and a minute of microseconds has passed.
	assert.False(t, stale.IsFresh(1_000_000))
	assert.True(t, stale.IsFresh(math.MaxUint32))
}

func TestGranularityLifetime(t *testing.T) {
	assert.Equal(t, lifetimeUnits*time.Second, Seconds.Lifetime())
	assert.Equal(t, lifetimeUnits*time.Millisecond, Milliseconds.Lifetime())
	assert.Equal(t, lifetimeUnits*time.Microsecond, Microseconds.Lifetime())
}
