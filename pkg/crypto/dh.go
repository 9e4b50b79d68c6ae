// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package crypto

import (
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// DH computes the Curve25519 shared secret between a private scalar and
// a peer public key. Rejects low-order public keys (all-zero output).
func DH(private, public *[DHLen]byte) ([DHLen]byte, error) {
	var shared [DHLen]byte
	out, err := curve25519.X25519(private[:], public[:])
	if err != nil {
		return shared, fmt.Errorf("crypto: diffie-hellman: %w", err)
	}
	copy(shared[:], out)
	Zeroize(out)
	return shared, nil
}

// PublicFromPrivate computes the Curve25519 public key for a private
// scalar.
func PublicFromPrivate(private *[DHLen]byte) ([DHLen]byte, error) {
	var public [DHLen]byte
	out, err := curve25519.X25519(private[:], curve25519.Basepoint)
	if err != nil {
		return public, fmt.Errorf("crypto: public key derivation: %w", err)
	}
	copy(public[:], out)
	return public, nil
}
