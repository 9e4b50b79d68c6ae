// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package nonce

import (
	"encoding/binary"
	"math"
)

// Monotonic is the plain counter kind: context[4] || counter[8] with a
// big-endian 64-bit counter. It carries no timestamp and never expires
// by age, only by counter exhaustion.
type Monotonic struct {
	base
}

var _ Nonce = (*Monotonic)(nil)

// NewMonotonic creates a Monotonic nonce under context starting at
// counter.
func NewMonotonic(context [ContextSize]byte, counter uint64) *Monotonic {
	n := &Monotonic{base: newBase(context)}
	binary.BigEndian.PutUint64(n.b[4:12], counter)
	return n
}

// MonotonicFromBytes rebuilds a Monotonic nonce from its wire form and
// recorded creation epoch (microseconds since the Unix epoch).
func MonotonicFromBytes(b [Size]byte, createdAtMicros uint64) *Monotonic {
	return &Monotonic{base: base{b: b, createdAt: createdAtMicros}}
}

// Kind implements Nonce.
func (n *Monotonic) Kind() Kind { return KindMonotonic }

// Counter returns the 64-bit counter value.
func (n *Monotonic) Counter() uint64 {
	return binary.BigEndian.Uint64(n.b[4:12])
}

// SetCounter replaces the counter. Session receivers use this to
// process packets out of order; plain senders never call it.
func (n *Monotonic) SetCounter(counter uint64) {
	binary.BigEndian.PutUint64(n.b[4:12], counter)
}

// NeedsRotation implements Nonce.
func (n *Monotonic) NeedsRotation() error {
	if n.Counter() > math.MaxUint64/2 {
		return ErrCounterExpired
	}
	return nil
}

// Next implements Nonce.
func (n *Monotonic) Next() error {
	if err := n.NeedsRotation(); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(n.b[4:12], n.Counter()+1)
	return nil
}

// Clone implements Nonce.
func (n *Monotonic) Clone() Nonce {
	c := *n
	return &c
}
