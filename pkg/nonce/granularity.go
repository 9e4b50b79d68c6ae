// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package nonce

import (
	"encoding/binary"
	"time"
)

// lifetimeUnits bounds how many granularity units a timestamped nonce
// may live. The 32-bit timestamp field wraps at 2^32; expiring at
// 4_000_000_000 keeps a margin below the wrap point.
const lifetimeUnits = 4_000_000_000

// Granularity selects the time unit of the 32-bit timestamp field in
// the timestamped nonce kinds.
type Granularity int

const (
	Seconds Granularity = iota
	Milliseconds
	Microseconds
)

// String implements fmt.Stringer.
func (g Granularity) String() string {
	switch g {
	case Seconds:
		return "seconds"
	case Milliseconds:
		return "milliseconds"
	case Microseconds:
		return "microseconds"
	default:
		return "unknown"
	}
}

// unit returns the duration of one granularity unit.
func (g Granularity) unit() time.Duration {
	switch g {
	case Seconds:
		return time.Second
	case Milliseconds:
		return time.Millisecond
	default:
		return time.Microsecond
	}
}

// Lifetime returns the maximum age of a timestamped nonce at this
// granularity. A nonce older than this refuses to advance.
func (g Granularity) Lifetime() time.Duration {
	return lifetimeUnits * g.unit()
}

// unitsSince converts the elapsed time since epoch into granularity
// units, truncated to 32 bits. Negative elapsed time (clock skew on a
// deserialized nonce) counts as zero.
func (g Granularity) unitsSince(epoch time.Time) uint32 {
	d := time.Since(epoch)
	if d < 0 {
		return 0
	}
	return uint32(d / g.unit())
}

// timestamp renders unitsSince as the big-endian 4-byte field.
func (g Granularity) timestamp(epoch time.Time) [4]byte {
	var ts [4]byte
	binary.BigEndian.PutUint32(ts[:], g.unitsSince(epoch))
	return ts
}

// expired reports whether the wall clock has passed the lifetime since
// epoch.
func (g Granularity) expired(epoch time.Time) bool {
	return time.Since(epoch) > g.Lifetime()
}
