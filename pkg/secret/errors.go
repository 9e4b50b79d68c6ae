// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import "errors"

var (
	// ErrDestroyed is returned when accessing a destroyed container.
	ErrDestroyed = errors.New("secret: container destroyed")

	// ErrInvalidLength is returned when a buffer has the wrong size,
	// for example a packet shorter than a nonce.
	ErrInvalidLength = errors.New("secret: invalid length")

	// ErrSerialization is returned when a Serializable value fails to
	// marshal or unmarshal.
	ErrSerialization = errors.New("secret: serialization failure")

	// ErrNonceKind is returned when an operation needs a nonce kind
	// the key does not carry, such as setting the counter of a
	// non-monotonic nonce.
	ErrNonceKind = errors.New("secret: nonce kind mismatch")
)
