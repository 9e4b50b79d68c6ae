// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"fmt"
	"sync"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/nonce"
)

// Key pairs an ephemeral fixed secret with a self-advancing nonce. The
// nonce sits behind a read-write lock; Encrypt stamps the current nonce
// and advances it under the write lock before the AEAD runs, so no two
// encryptions can observe the same nonce value.
type Key struct {
	secret *FixedSecret[Ephemeral]
	mu     sync.RWMutex
	n      nonce.Nonce
}

// NewKey wraps an existing ephemeral fixed secret and nonce.
func NewKey(secret *FixedSecret[Ephemeral], n nonce.Nonce) *Key {
	return &Key{secret: secret, n: n}
}

// KeyFromBytes creates a Key holding a copy of value, wiping the
// caller's buffer.
func KeyFromBytes(value []byte, tag string, n nonce.Nonce, opts ...Option) *Key {
	return NewKey(NewFixed[Ephemeral](value, tag, opts...), n)
}

// RandomKey creates a Key with crypto.KeySize random bytes.
func RandomKey(tag string, n nonce.Nonce, opts ...Option) (*Key, error) {
	s, err := RandomFixed[Ephemeral](crypto.KeySize, tag, opts...)
	if err != nil {
		return nil, err
	}
	return NewKey(s, n), nil
}

// Tag returns the key's human tag.
func (k *Key) Tag() string { return k.secret.Tag() }

// AccessCount returns the underlying container's access counter.
func (k *Key) AccessCount() uint64 { return k.secret.AccessCount() }

// NonceBytes returns the current nonce wire form.
func (k *Key) NonceBytes() [crypto.NonceSize]byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.n.Bytes()
}

// NeedsRotation reports whether the nonce refuses further advances,
// meaning the key must be rotated.
func (k *Key) NeedsRotation() error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.n.NeedsRotation()
}

// SetCounter replaces the counter of the key's monotonic nonce.
// Receivers processing packets out of order use this to jump to a
// known incoming counter. Fails with ErrNonceKind for other kinds.
func (k *Key) SetCounter(counter uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.n.(*nonce.Monotonic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNonceKind, k.n.Kind())
	}
	m.SetCounter(counter)
	return nil
}

// Encrypt seals plaintext into dest (ciphertext || tag layout) with the
// key's current nonce and writes the nonce used into outNonce. Under
// the write lock the nonce is stamped and advanced; the AEAD then runs
// without the lock using the stamped value. A nonce that refuses to
// advance fails the whole operation before any bytes are produced.
func (k *Key) Encrypt(dest, plaintext []byte, outNonce *[crypto.NonceSize]byte, associatedData []byte) error {
	k.mu.Lock()
	b := k.n.Bytes()
	copy(outNonce[:], b[:])
	if err := k.n.Next(); err != nil {
		k.mu.Unlock()
		return fmt.Errorf("secret: nonce advance: %w", err)
	}
	k.mu.Unlock()

	return k.secret.With(func(key []byte) error {
		return crypto.Encrypt(dest, plaintext, key, outNonce[:], associatedData)
	})
}

// EncryptAt seals plaintext into dest with an explicit nonce, leaving
// the key's own nonce untouched. Protocol-level rekeying uses this to
// encrypt at a reserved nonce value outside the normal sequence.
func (k *Key) EncryptAt(dest, plaintext []byte, n [crypto.NonceSize]byte, associatedData []byte) error {
	return k.secret.With(func(key []byte) error {
		return crypto.Encrypt(dest, plaintext, key, n[:], associatedData)
	})
}

// AdvanceNonce advances the key's nonce without encrypting. Receivers
// call this after a successful decrypt to stay in step with the sender.
func (k *Key) AdvanceNonce() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.n.Next()
}

// Nonce returns an independent clone of the current nonce.
func (k *Key) Nonce() nonce.Nonce {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.n.Clone()
}

// Decrypt opens ciphertext (ciphertext || tag layout) into dest using
// the supplied nonce. Only the secret's read view is taken; the key's
// own nonce is not involved.
func (k *Key) Decrypt(dest, ciphertext []byte, n [crypto.NonceSize]byte, associatedData []byte) error {
	return k.secret.With(func(key []byte) error {
		return crypto.Decrypt(dest, ciphertext, key, n[:], associatedData)
	})
}

// Clone deep-copies both the key material and the current nonce.
func (k *Key) Clone() *Key {
	k.mu.RLock()
	n := k.n.Clone()
	k.mu.RUnlock()
	return &Key{secret: k.secret.Clone(), n: n}
}

// Equal reports whether both the key material and the current nonce
// wire form match.
func (k *Key) Equal(other *Key) bool {
	if k == other {
		return true
	}
	if !k.secret.Equal(other.secret) {
		return false
	}
	return k.NonceBytes() == other.NonceBytes()
}

// Destroy wipes the key material.
func (k *Key) Destroy() {
	k.secret.Destroy()
}
