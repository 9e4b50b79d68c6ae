// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package nonce

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
)

// timestamped carries the granularity shared by the two timestamped
// kinds and the common timestamp accessors. The timestamp field counts
// granularity units elapsed since the nonce's own creation epoch and is
// refreshed on every advance.
type timestamped struct {
	base
	granularity Granularity
}

// Granularity returns the time unit of the timestamp field.
func (n *timestamped) Granularity() Granularity {
	return n.granularity
}

// Timestamp returns the 4-byte timestamp portion of the wire form.
func (n *timestamped) Timestamp() [4]byte {
	var ts [4]byte
	copy(ts[:], n.b[4:8])
	return ts
}

// TimestampNum returns the current age of the nonce in granularity
// units, computed live from the wall clock.
func (n *timestamped) TimestampNum() uint32 {
	return n.granularity.unitsSince(n.CreatedAt())
}

// IsFresh reports whether no more than maxAge granularity units have
// passed since the stamped value was written.
func (n *timestamped) IsFresh(maxAge uint32) bool {
	current := n.granularity.unitsSince(n.CreatedAt())
	stamped := binary.BigEndian.Uint32(n.b[4:8])
	if current < stamped {
		return false
	}
	return current-stamped <= maxAge
}

func (n *timestamped) stampNow() {
	ts := n.granularity.timestamp(n.CreatedAt())
	copy(n.b[4:8], ts[:])
}

// MonotonicTimestamp is the timestamped counter kind:
// context[4] || ts[4] || counter[4] with a big-endian 32-bit counter.
// Advancing refreshes the timestamp and increments the counter.
type MonotonicTimestamp struct {
	timestamped
}

var _ Nonce = (*MonotonicTimestamp)(nil)

// NewMonotonicTimestamp creates a MonotonicTimestamp nonce under
// context starting at counter.
func NewMonotonicTimestamp(context [ContextSize]byte, counter uint32, g Granularity) *MonotonicTimestamp {
	n := &MonotonicTimestamp{timestamped{base: newBase(context), granularity: g}}
	n.stampNow()
	binary.BigEndian.PutUint32(n.b[8:12], counter)
	return n
}

// MonotonicTimestampFromBytes rebuilds a MonotonicTimestamp nonce from
// its wire form and recorded creation epoch (microseconds since the
// Unix epoch).
func MonotonicTimestampFromBytes(b [Size]byte, createdAtMicros uint64, g Granularity) *MonotonicTimestamp {
	return &MonotonicTimestamp{timestamped{
		base:        base{b: b, createdAt: createdAtMicros},
		granularity: g,
	}}
}

// Kind implements Nonce.
func (n *MonotonicTimestamp) Kind() Kind { return KindMonotonicTimestamp }

// Counter returns the 32-bit counter value.
func (n *MonotonicTimestamp) Counter() uint32 {
	return binary.BigEndian.Uint32(n.b[8:12])
}

// NeedsRotation implements Nonce. Age is checked before the counter so
// the caller learns the earlier-expiring reason first.
func (n *MonotonicTimestamp) NeedsRotation() error {
	if n.granularity.expired(n.CreatedAt()) {
		return ErrTimestampExpired
	}
	if n.Counter() > math.MaxUint32/2 {
		return ErrCounterExpired
	}
	return nil
}

// Next implements Nonce.
func (n *MonotonicTimestamp) Next() error {
	if err := n.NeedsRotation(); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(n.b[8:12], n.Counter()+1)
	n.stampNow()
	return nil
}

// Clone implements Nonce.
func (n *MonotonicTimestamp) Clone() Nonce {
	c := *n
	return &c
}

// RandomTimestamp is the timestamped random kind:
// context[4] || ts[4] || random[4]. Advancing refreshes the timestamp
// and redraws the random portion from the CSPRNG.
type RandomTimestamp struct {
	timestamped
}

var _ Nonce = (*RandomTimestamp)(nil)

// NewRandomTimestamp creates a RandomTimestamp nonce under context, or
// fails with ErrFillRandom when the CSPRNG is unavailable.
func NewRandomTimestamp(context [ContextSize]byte, g Granularity) (*RandomTimestamp, error) {
	n := &RandomTimestamp{timestamped{base: newBase(context), granularity: g}}
	n.stampNow()
	if err := crypto.FillRandom(n.b[8:12]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFillRandom, err)
	}
	return n, nil
}

// RandomTimestampFromBytes rebuilds a RandomTimestamp nonce from its
// wire form and recorded creation epoch (microseconds since the Unix
// epoch).
func RandomTimestampFromBytes(b [Size]byte, createdAtMicros uint64, g Granularity) *RandomTimestamp {
	return &RandomTimestamp{timestamped{
		base:        base{b: b, createdAt: createdAtMicros},
		granularity: g,
	}}
}

// Kind implements Nonce.
func (n *RandomTimestamp) Kind() Kind { return KindRandomTimestamp }

// Random returns the 4-byte random portion of the wire form.
func (n *RandomTimestamp) Random() [4]byte {
	var r [4]byte
	copy(r[:], n.b[8:12])
	return r
}

// RandomNum returns the random portion as a big-endian uint32.
func (n *RandomTimestamp) RandomNum() uint32 {
	return binary.BigEndian.Uint32(n.b[8:12])
}

// NeedsRotation implements Nonce.
func (n *RandomTimestamp) NeedsRotation() error {
	if n.granularity.expired(n.CreatedAt()) {
		return ErrTimestampExpired
	}
	return nil
}

// Next implements Nonce.
func (n *RandomTimestamp) Next() error {
	if err := n.NeedsRotation(); err != nil {
		return err
	}
	n.stampNow()
	if err := crypto.FillRandom(n.b[8:12]); err != nil {
		return fmt.Errorf("%w: %v", ErrFillRandom, err)
	}
	return nil
}

// Clone implements Nonce.
func (n *RandomTimestamp) Clone() Nonce {
	c := *n
	return &c
}
