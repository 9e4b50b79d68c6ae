// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync/atomic"

	"github.com/anchorlock/go-anchorlock/pkg/audit"
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/metrics"
)

// Serializable is a value that can live inside a DynamicSecret. It
// serializes to bytes, reconstructs from them, and knows how to wipe
// itself.
type Serializable interface {
	MarshalSecret() ([]byte, error)
	UnmarshalSecret(data []byte) error
	Zeroize()
}

// DynamicSecret is a variable-size locked byte buffer at security
// level L. It stores the serialized form of a value; a mutation that
// changes the serialized length reallocates the backing buffer and
// wipes the old one.
type DynamicSecret[L Level] struct {
	mu        mutex
	buf       []byte
	tag       string
	accesses  atomic.Uint64
	recorder  audit.Recorder
	destroyed bool
}

// NewDynamic creates a container holding a copy of value and wipes the
// caller's buffer.
func NewDynamic[L Level](value []byte, tag string, opts ...Option) *DynamicSecret[L] {
	o := buildOptions(opts)
	buf := make([]byte, len(value))
	copy(buf, value)
	crypto.Zeroize(value)
	return &DynamicSecret[L]{
		mu:       newMutex(),
		buf:      buf,
		tag:      tag,
		recorder: o.recorder,
	}
}

// RandomDynamic creates a container of size bytes drawn from the OS
// CSPRNG.
func RandomDynamic[L Level](size int, tag string, opts ...Option) (*DynamicSecret[L], error) {
	buf := make([]byte, size)
	if err := crypto.FillRandom(buf); err != nil {
		return nil, err
	}
	return NewDynamic[L](buf, tag, opts...), nil
}

// FromValue serializes v into a new container and wipes v.
func FromValue[L Level](v Serializable, tag string, opts ...Option) (*DynamicSecret[L], error) {
	data, err := v.MarshalSecret()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	v.Zeroize()
	return NewDynamic[L](data, tag, opts...), nil
}

// Tag returns the container's human tag.
func (s *DynamicSecret[L]) Tag() string { return s.tag }

// Len returns the current serialized size in bytes.
func (s *DynamicSecret[L]) Len() int {
	s.mu.lock()
	defer s.mu.unlock()
	return len(s.buf)
}

// AccessCount returns how many audited accesses have run.
func (s *DynamicSecret[L]) AccessCount() uint64 { return s.accesses.Load() }

// SecurityLevel returns the container's level.
func (s *DynamicSecret[L]) SecurityLevel() SecurityLevel { return levelOf[L]() }

func (s *DynamicSecret[L]) record(op string, count uint64) error {
	if err := s.recorder.Record(audit.NewEntry(op, s.tag, count)); err != nil {
		return err
	}
	metrics.RecordSecretAccess(op, levelOf[L]().String())
	return nil
}

// access runs f over a scratch copy under the (already held) lock.
// When f returns replacement bytes of a different length, the backing
// buffer is reallocated and the old one wiped.
func (s *DynamicSecret[L]) access(op string, f func(value []byte) ([]byte, error)) error {
	defer s.mu.unlock()

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

	replacement, err := f(ref.Bytes())
	if err != nil {
		return err
	}
	if replacement == nil {
		return nil
	}
	if len(replacement) == len(s.buf) {
		copy(s.buf, replacement)
	} else {
		crypto.Zeroize(s.buf)
		s.buf = append([]byte(nil), replacement...)
	}
	// Callers hand over ownership of the replacement slice.
	crypto.Zeroize(replacement)
	return nil
}

// With runs f over a read view of the secret.
func (s *DynamicSecret[L]) With(f func(value []byte) error) error {
	s.mu.lock()
	return s.access(opAccess, func(value []byte) ([]byte, error) {
		return nil, f(value)
	})
}

// WithMut runs f over a mutable view. f returns the new contents; a
// changed length reallocates the backing buffer and wipes the old one.
// Returning the input slice (mutated in place) is allowed.
func (s *DynamicSecret[L]) WithMut(f func(value []byte) ([]byte, error)) error {
	s.mu.lock()
	return s.access(opMutableAccess, func(value []byte) ([]byte, error) {
		out, err := f(value)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = value
		}
		return out, nil
	})
}

// WithCtx is With, suspending at the lock until ctx is done.
func (s *DynamicSecret[L]) WithCtx(ctx context.Context, f func(value []byte) error) error {
	if err := s.mu.lockCtx(ctx); err != nil {
		return err
	}
	return s.access(opAccess, func(value []byte) ([]byte, error) {
		return nil, f(value)
	})
}

// WithMutCtx is WithMut, suspending at the lock until ctx is done.
func (s *DynamicSecret[L]) WithMutCtx(ctx context.Context, f func(value []byte) ([]byte, error)) error {
	if err := s.mu.lockCtx(ctx); err != nil {
		return err
	}
	return s.access(opMutableAccess, func(value []byte) ([]byte, error) {
		out, err := f(value)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = value
		}
		return out, nil
	})
}

// Copy returns a caller-owned copy of the contents. The caller is
// responsible for wiping it.
func (s *DynamicSecret[L]) Copy() ([]byte, error) {
	var out []byte
	s.mu.lock()
	err := s.access(opCopy, func(value []byte) ([]byte, error) {
		out = append([]byte(nil), value...)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithValue reconstructs the stored value into v, runs f, and wipes v
// afterwards. v must be a fresh instance of the stored type.
func (s *DynamicSecret[L]) WithValue(v Serializable, f func() error) error {
	defer v.Zeroize()
	return s.With(func(value []byte) error {
		if err := v.UnmarshalSecret(value); err != nil {
			return fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return f()
	})
}

// WithMutValue reconstructs the stored value into v, runs f, and
// re-serializes v as the new contents, wiping v afterwards.
func (s *DynamicSecret[L]) WithMutValue(v Serializable, f func() error) error {
	defer v.Zeroize()
	return s.WithMut(func(value []byte) ([]byte, error) {
		if err := v.UnmarshalSecret(value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		if err := f(); err != nil {
			return nil, err
		}
		out, err := v.MarshalSecret()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return out, nil
	})
}

// Clone returns an independent copy with the same tag, contents, and
// access count.
func (s *DynamicSecret[L]) Clone() *DynamicSecret[L] {
	s.mu.lock()
	defer s.mu.unlock()
	c := &DynamicSecret[L]{
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
func (s *DynamicSecret[L]) Equal(other *DynamicSecret[L]) bool {
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

// Destroy wipes the buffer and marks the container unusable.
func (s *DynamicSecret[L]) Destroy() {
	s.mu.lock()
	defer s.mu.unlock()
	crypto.Zeroize(s.buf)
	s.destroyed = true
}
