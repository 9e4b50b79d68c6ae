// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package nonce provides typed 96-bit AEAD nonces. Every nonce is
// 12 bytes laid out as context[4] || body[8]; the body layout depends
// on the kind:
//
//	Monotonic:          counter[8]       (64-bit big-endian counter)
//	MonotonicTimestamp: ts[4]||counter[4] (32-bit each, big-endian)
//	RandomTimestamp:    ts[4]||random[4]
//
// The kind set is closed. Counter-bearing kinds refuse to advance once
// the counter passes half its range, and timestamped kinds refuse once
// the wall clock passes the granularity lifetime, so an owning key is
// always rotated before nonce reuse becomes possible.
package nonce

import (
	"time"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
)

const (
	// Size is the wire size of a nonce in bytes.
	Size = crypto.NonceSize

	// ContextSize is the size of the context prefix in bytes.
	ContextSize = 4
)

// Kind identifies one of the three nonce layouts.
type Kind int

const (
	KindMonotonic Kind = iota
	KindMonotonicTimestamp
	KindRandomTimestamp
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindMonotonic:
		return "monotonic"
	case KindMonotonicTimestamp:
		return "monotonic-timestamp"
	case KindRandomTimestamp:
		return "random-timestamp"
	default:
		return "unknown"
	}
}

// Nonce is the capability set shared by all three kinds. The context
// bytes are immutable after construction and the body advances through
// Next. Implementations are not safe for concurrent use; owners guard
// them with their own lock (see the key type in pkg/secret).
type Nonce interface {
	// Kind reports the layout of this nonce.
	Kind() Kind

	// Context returns the 4-byte context prefix.
	Context() [ContextSize]byte

	// Bytes returns a copy of the 12-byte wire form.
	Bytes() [Size]byte

	// Hex returns the wire form as lowercase hex.
	Hex() string

	// CreatedAt returns the creation epoch. Reconstructors restore it
	// so a deserialized nonce keeps its age.
	CreatedAt() time.Time

	// ValidateContext reports whether the context prefix matches.
	ValidateContext(context [ContextSize]byte) bool

	// NeedsRotation returns nil when the nonce may still advance, or
	// ErrCounterExpired / ErrTimestampExpired when the owning key must
	// be rotated first.
	NeedsRotation() error

	// Next advances the body to the next value. It fails with the
	// NeedsRotation error when the nonce is exhausted, leaving the
	// bytes untouched.
	Next() error

	// Clone returns an independent deep copy.
	Clone() Nonce

	sealedNonce()
}

// base carries the fields every kind shares.
type base struct {
	b         [Size]byte
	createdAt uint64 // microseconds since the Unix epoch
}

func newBase(context [ContextSize]byte) base {
	var n base
	copy(n.b[:ContextSize], context[:])
	n.createdAt = nowMicros()
	return n
}

func nowMicros() uint64 {
	return uint64(time.Now().UnixMicro())
}

func (n *base) Context() [ContextSize]byte {
	var ctx [ContextSize]byte
	copy(ctx[:], n.b[:ContextSize])
	return ctx
}

func (n *base) Bytes() [Size]byte {
	return n.b
}

func (n *base) Hex() string {
	return crypto.ToHex(n.b[:])
}

func (n *base) CreatedAt() time.Time {
	return time.UnixMicro(int64(n.createdAt))
}

func (n *base) ValidateContext(context [ContextSize]byte) bool {
	return [ContextSize]byte(n.b[:ContextSize]) == context
}

func (n *base) sealedNonce() {}
