// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package crypto

import "errors"

var (
	// ErrHex indicates a hex encode or decode failure.
	ErrHex = errors.New("crypto: invalid hex")

	// ErrRandomSource indicates the operating system CSPRNG failed.
	ErrRandomSource = errors.New("crypto: random source failure")

	// ErrInvalidKeyLength indicates a key of the wrong size was supplied.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length")

	// ErrInvalidNonceLength indicates a nonce of the wrong size was supplied.
	ErrInvalidNonceLength = errors.New("crypto: invalid nonce length")

	// ErrDestTooSmall indicates the destination buffer cannot hold the output.
	ErrDestTooSmall = errors.New("crypto: destination buffer too small")

	// ErrExpandTooLong indicates an HKDF expansion beyond 255 hash blocks.
	ErrExpandTooLong = errors.New("crypto: hkdf expand output too long")

	// ErrEncrypt indicates an AEAD seal failure.
	ErrEncrypt = errors.New("crypto: encryption failure")

	// ErrDecrypt indicates an AEAD open failure (authentication or format).
	ErrDecrypt = errors.New("crypto: decryption failure")
)
