// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package crypto

import (
	"crypto/hmac"
	"crypto/subtle"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2s"
)

// Argon2id cost parameters. Fixed: a variable cost would let a caller
// silently weaken every password-derived key in the system.
const (
	argon2Memory  = 65536 // KiB
	argon2Time    = 3
	argon2Threads = 1
)

func newBlake2s() hash.Hash {
	// blake2s.New256 only fails when a key longer than 32 bytes is
	// supplied; the unkeyed form cannot error.
	h, _ := blake2s.New256(nil)
	return h
}

// DerivePDK derives a password-derived key into dest using Argon2id
// with fixed cost parameters (memory=65536 KiB, time=3, parallelism=1).
// The output length is len(dest).
func DerivePDK(dest, password, salt []byte) error {
	if len(dest) == 0 {
		return ErrDestTooSmall
	}
	key := argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, uint32(len(dest)))
	copy(dest, key)
	Zeroize(key)
	return nil
}

// VerifyPassword re-derives the password-derived key and compares it to
// expected in constant time.
func VerifyPassword(password, salt, expected []byte) (bool, error) {
	derived := make([]byte, len(expected))
	defer Zeroize(derived)
	if err := DerivePDK(derived, password, salt); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}

// DeriveSubkey derives a context-bound subkey from key into dest using
// HMAC-BLAKE2s(key, context), truncated to len(dest).
func DeriveSubkey(dest, key []byte, context string) error {
	if len(dest) == 0 {
		return ErrDestTooSmall
	}
	if len(dest) > HashLen {
		return ErrInvalidKeyLength
	}
	mac := hmac.New(newBlake2s, key)
	mac.Write([]byte(context))
	sum := mac.Sum(nil)
	copy(dest, sum[:len(dest)])
	Zeroize(sum)
	return nil
}
