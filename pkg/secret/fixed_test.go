// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorlock/go-anchorlock/pkg/audit"
)

// memRecorder captures audit entries for assertions.
type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
	fail    error
}

func (r *memRecorder) Record(e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRecorder) operations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, len(r.entries))
	for i, e := range r.entries {
		ops[i] = e.Operation
	}
	return ops
}

func TestNewFixedConsumesInput(t *testing.T) {
	value := []byte{1, 2, 3, 4}
	s := NewFixed[Ephemeral](value, "test secret", WithRecorder(&memRecorder{}))

	// The caller's buffer is wiped; the container holds the only copy.
	assert.Equal(t, []byte{0, 0, 0, 0}, value)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "test secret", s.Tag())
	assert.Equal(t, LevelEphemeral, s.SecurityLevel())

	require.NoError(t, s.With(func(v []byte) error {
		assert.Equal(t, []byte{1, 2, 3, 4}, v)
		return nil
	}))
}

func TestFixedWithIsReadOnly(t *testing.T) {
	s := NewFixed[Ephemeral]([]byte{1, 2, 3}, "ro", WithRecorder(&memRecorder{}))

	// Mutating the scratch view must not leak into the container.
	require.NoError(t, s.With(func(v []byte) error {
		v[0] = 99
		return nil
	}))
	require.NoError(t, s.With(func(v []byte) error {
		assert.Equal(t, byte(1), v[0])
		return nil
	}))
}

func TestFixedWithMutPersists(t *testing.T) {
	s := NewFixed[Ephemeral]([]byte{1, 2, 3}, "rw", WithRecorder(&memRecorder{}))

	require.NoError(t, s.WithMut(func(v []byte) error {
		v[0] = 99
		return nil
	}))
	require.NoError(t, s.With(func(v []byte) error {
		assert.Equal(t, byte(99), v[0])
		return nil
	}))
}

func TestFixedAuditTrail(t *testing.T) {
	rec := &memRecorder{}
	s := NewFixed[Encrypted]([]byte{1}, "audited", WithRecorder(rec))

	require.NoError(t, s.With(func([]byte) error { return nil }))
	require.NoError(t, s.WithMut(func([]byte) error { return nil }))

	assert.Equal(t, []string{"access", "mutable access"}, rec.operations())
	assert.Equal(t, uint64(2), s.AccessCount())
	assert.Equal(t, "audited", rec.entries[0].Tag)
	assert.Equal(t, uint64(1), rec.entries[0].AccessCount)
}

func TestFixedAuditRefusalBlocksAccess(t *testing.T) {
	rec := &memRecorder{fail: audit.ErrBuffersFull}
	s := NewFixed[Ephemeral]([]byte{1}, "blocked", WithRecorder(rec))

	ran := false
	err := s.With(func([]byte) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, audit.ErrBuffersFull)
	assert.False(t, ran)
}

func TestFixedDestroy(t *testing.T) {
	s := NewFixed[Ephemeral]([]byte{1, 2, 3}, "doomed", WithRecorder(&memRecorder{}))
	s.Destroy()

	assert.ErrorIs(t, s.With(func([]byte) error { return nil }), ErrDestroyed)
	assert.ErrorIs(t, s.WithMut(func([]byte) error { return nil }), ErrDestroyed)
}

func TestFixedWithCtxSuspends(t *testing.T) {
	s := NewFixed[Ephemeral]([]byte{1}, "ctx", WithRecorder(&memRecorder{}))

	// Hold the lock from another access, then watch the ctx variant
	// give up when the context dies.
	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.With(func([]byte) error {
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.WithCtx(ctx, func([]byte) error { return nil }), context.Canceled)
	close(release)
}

func TestFixedCloneAndEqual(t *testing.T) {
	rec := &memRecorder{}
	a := NewFixed[Ephemeral]([]byte{9, 9}, "pair", WithRecorder(rec))
	b := a.Clone()

	assert.True(t, a.Equal(b))

	require.NoError(t, b.WithMut(func(v []byte) error {
		v[0] = 0
		return nil
	}))
	assert.False(t, a.Equal(b))
	// The original is untouched by the clone's mutation.
	require.NoError(t, a.With(func(v []byte) error {
		assert.Equal(t, byte(9), v[0])
		return nil
	}))
}

func TestFixedPanicInCallbackStillWipesAndUnlocks(t *testing.T) {
	rec := &memRecorder{}
	s := NewFixed[Ephemeral]([]byte{1, 2}, "panicky", WithRecorder(rec))

	assert.Panics(t, func() {
		_ = s.With(func([]byte) error { panic("boom") })
	})

	// The lock was released and the recovery audited.
	require.NoError(t, s.With(func([]byte) error { return nil }))
	assert.Contains(t, rec.operations(), "panic recovered")
}

func TestRandomFixed(t *testing.T) {
	a, err := RandomFixed[Ephemeral](32, "rand-a", WithRecorder(&memRecorder{}))
	require.NoError(t, err)
	b, err := RandomFixed[Ephemeral](32, "rand-b", WithRecorder(&memRecorder{}))
	require.NoError(t, err)

	assert.Equal(t, 32, a.Len())
	assert.False(t, a.Equal(b))
}

func TestFixedErrorPropagates(t *testing.T) {
	s := NewFixed[Ephemeral]([]byte{1}, "err", WithRecorder(&memRecorder{}))
	sentinel := errors.New("callback failure")
	assert.ErrorIs(t, s.With(func([]byte) error { return sentinel }), sentinel)
}
