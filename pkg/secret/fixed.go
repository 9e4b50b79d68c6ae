// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package secret provides in-memory containers for sensitive material:
// fixed and variable size locked buffers, keys with self-advancing
// nonces, and a typed plaintext/ciphertext data pipeline. Every access
// to a container is audited and runs over a scratch copy that is wiped
// before the access returns.
package secret

import (
	"context"
	"crypto/subtle"
	"sync/atomic"

	"github.com/anchorlock/go-anchorlock/pkg/audit"
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/metrics"
)

// Audit operation names.
const (
	opAccess        = "access"
	opMutableAccess = "mutable access"
	opCopy          = "copy"
	opExport        = "export"
	opImport        = "import"
	opPanic         = "panic recovered"
)

// FixedSecret is a fixed-size locked byte buffer at security level L.
// The buffer size is set at construction and never changes.
type FixedSecret[L Level] struct {
	mu        mutex
	buf       []byte
	tag       string
	accesses  atomic.Uint64
	recorder  audit.Recorder
	destroyed bool
}

// NewFixed creates a container holding a copy of value and wipes the
// caller's buffer, so the only live copy is inside the container.
func NewFixed[L Level](value []byte, tag string, opts ...Option) *FixedSecret[L] {
	o := buildOptions(opts)
	buf := make([]byte, len(value))
	copy(buf, value)
	crypto.Zeroize(value)
	return &FixedSecret[L]{
		mu:       newMutex(),
		buf:      buf,
		tag:      tag,
		recorder: o.recorder,
	}
}

// RandomFixed creates a container of size bytes drawn from the OS
// CSPRNG.
func RandomFixed[L Level](size int, tag string, opts ...Option) (*FixedSecret[L], error) {
	buf := make([]byte, size)
	if err := crypto.FillRandom(buf); err != nil {
		return nil, err
	}
	return NewFixed[L](buf, tag, opts...), nil
}

// Tag returns the container's human tag.
func (s *FixedSecret[L]) Tag() string { return s.tag }

// Len returns the buffer size in bytes.
func (s *FixedSecret[L]) Len() int { return len(s.buf) }

// AccessCount returns how many audited accesses have run.
func (s *FixedSecret[L]) AccessCount() uint64 { return s.accesses.Load() }

// SecurityLevel returns the container's level.
func (s *FixedSecret[L]) SecurityLevel() SecurityLevel { return levelOf[L]() }

// record audits one access; a refused audit refuses the access.
func (s *FixedSecret[L]) record(op string, count uint64) error {
	if err := s.recorder.Record(audit.NewEntry(op, s.tag, count)); err != nil {
		return err
	}
	metrics.RecordSecretAccess(op, levelOf[L]().String())
	return nil
}

// access runs f over a scratch copy under the lock. The scratch is
// wiped on every exit path; when mutate is set, it is copied back into
// the locked buffer first. A panicking f still unlocks and wipes, and
// the recovery is audited before the panic resumes.
func (s *FixedSecret[L]) access(op string, mutate bool, f func(value []byte) error) error {
	defer s.mu.unlock()
	return s.run(op, mutate, f)
}

func (s *FixedSecret[L]) run(op string, mutate bool, f func(value []byte) error) error {
	if s.destroyed {
		return ErrDestroyed
	}
	count := s.accesses.Add(1)
	if err := s.record(op, count); err != nil {
		return err
	}

	ref := NewSecureRef(append([]byte(nil), s.buf...))
	defer ref.Close()
	defer func() {
		if r := recover(); r != nil {
			_ = s.record(opPanic, count)
			panic(r)
		}
	}()

	if err := f(ref.Bytes()); err != nil {
		return err
	}
	if mutate {
		copy(s.buf, ref.Bytes())
	}
	return nil
}

// With runs f over a read view of the secret.
func (s *FixedSecret[L]) With(f func(value []byte) error) error {
	s.mu.lock()
	return s.access(opAccess, false, f)
}

// WithMut runs f over a mutable view; changes are written back.
func (s *FixedSecret[L]) WithMut(f func(value []byte) error) error {
	s.mu.lock()
	return s.access(opMutableAccess, true, f)
}

// WithCtx is With, suspending at the lock until ctx is done.
func (s *FixedSecret[L]) WithCtx(ctx context.Context, f func(value []byte) error) error {
	if err := s.mu.lockCtx(ctx); err != nil {
		return err
	}
	return s.access(opAccess, false, f)
}

// WithMutCtx is WithMut, suspending at the lock until ctx is done.
func (s *FixedSecret[L]) WithMutCtx(ctx context.Context, f func(value []byte) error) error {
	if err := s.mu.lockCtx(ctx); err != nil {
		return err
	}
	return s.access(opMutableAccess, true, f)
}

// Clone returns an independent copy with the same tag, contents, and
// access count.
func (s *FixedSecret[L]) Clone() *FixedSecret[L] {
	s.mu.lock()
	defer s.mu.unlock()
	c := &FixedSecret[L]{
		mu:        newMutex(),
		buf:       append([]byte(nil), s.buf...),
		tag:       s.tag,
		recorder:  s.recorder,
		destroyed: s.destroyed,
	}
	c.accesses.Store(s.accesses.Load())
	return c
}

// Equal compares the contents of two containers in constant time.
func (s *FixedSecret[L]) Equal(other *FixedSecret[L]) bool {
	if s == other {
		return true
	}
	equal := false
	err := s.With(func(a []byte) error {
		return other.With(func(b []byte) error {
			equal = subtle.ConstantTimeCompare(a, b) == 1
			return nil
		})
	})
	return err == nil && equal
}

// Destroy wipes the buffer and marks the container unusable. Go has no
// guaranteed destructor, so owners call this explicitly when the
// secret's lifetime ends.
func (s *FixedSecret[L]) Destroy() {
	s.mu.lock()
	defer s.mu.unlock()
	crypto.Zeroize(s.buf)
	s.destroyed = true
}
