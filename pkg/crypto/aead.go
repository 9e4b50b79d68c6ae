// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encrypt seals plaintext into dest with detached layout
// ciphertext || tag. dest must hold at least len(plaintext)+TagSize
// bytes; exactly that many are written.
func Encrypt(dest, plaintext, key, nonce, associatedData []byte) error {
	if len(dest) < len(plaintext)+TagSize {
		return ErrDestTooSmall
	}
	if len(nonce) != NonceSize {
		return ErrInvalidNonceLength
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}
	aead.Seal(dest[:0], nonce, plaintext, associatedData)
	return nil
}

// Decrypt opens ciphertext (layout ciphertext || tag) into dest. On
// authentication failure dest is wiped before the error is returned,
// so a partial plaintext can never leak to the caller.
func Decrypt(dest, ciphertext, key, nonce, associatedData []byte) error {
	if len(ciphertext) < TagSize {
		return ErrDecrypt
	}
	if len(dest) < len(ciphertext)-TagSize {
		return ErrDestTooSmall
	}
	if len(nonce) != NonceSize {
		return ErrInvalidNonceLength
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}
	if _, err := aead.Open(dest[:0], nonce, ciphertext, associatedData); err != nil {
		Zeroize(dest)
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}
