// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package crypto wraps the fixed primitive suite used throughout
// go-anchorlock: BLAKE2s-256 hashing, Argon2id password derivation,
// HKDF over HMAC-BLAKE2s, detached ChaCha20-Poly1305 AEAD, and
// Curve25519 Diffie-Hellman.
//
// The suite is deliberately closed. Callers never select algorithms;
// they select key sizes and contexts. All functions that produce key
// material write into caller-owned buffers so ownership and zeroization
// stay with the caller, and all internal temporaries are wiped before
// the function returns.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"runtime"

	"golang.org/x/crypto/blake2s"
)

const (
	// KeySize is the symmetric key size in bytes (256-bit keys).
	KeySize = 32

	// NonceSize is the ChaCha20-Poly1305 nonce size in bytes.
	NonceSize = 12

	// TagSize is the Poly1305 authentication tag size in bytes.
	TagSize = 16

	// DHLen is the Curve25519 public key and shared secret size in bytes.
	DHLen = 32

	// HashLen is the BLAKE2s-256 digest size in bytes.
	HashLen = blake2s.Size
)

// Hash computes the BLAKE2s-256 digest of the concatenation of data.
func Hash(data ...[]byte) [HashLen]byte {
	h := newBlake2s()
	for _, d := range data {
		h.Write(d)
	}
	var out [HashLen]byte
	h.Sum(out[:0])
	return out
}

// FillRandom fills dest from the operating system CSPRNG.
func FillRandom(dest []byte) error {
	if _, err := rand.Read(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return nil
}

// ToHex encodes bytes as lowercase hex.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes lowercase or uppercase hex into bytes.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHex, err)
	}
	return b, nil
}

// Zeroize overwrites b with zeros to clear sensitive data from memory.
// Go's garbage collector gives no timing guarantees, so secrets are
// wiped explicitly on every exit path that handled them.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b) // prevent dead store elimination
}
