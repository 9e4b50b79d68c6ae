// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package crypto

import (
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF (RFC 5869) over HMAC-BLAKE2s. The salt is normalized to exactly
// HashLen bytes before extraction: shorter salts are zero-padded,
// longer salts truncated. Handshake chaining keys are always exactly
// HashLen bytes, so normalization is a no-op on the hot path; it only
// matters for caller-supplied salts.

// HKDFExtract computes HKDF-Extract(salt, ikm) into dest.
// dest must be exactly HashLen bytes.
func HKDFExtract(dest, salt, ikm []byte) error {
	if len(dest) != HashLen {
		return ErrDestTooSmall
	}
	s := make([]byte, HashLen)
	copy(s, salt) // pads or truncates
	prk := hkdf.Extract(newBlake2s, ikm, s)
	copy(dest, prk)
	Zeroize(prk)
	Zeroize(s)
	return nil
}

// HKDFExpand computes HKDF-Expand(prk, context) into dest. The output
// length is len(dest), bounded by 255*HashLen.
func HKDFExpand(dest, prk, context []byte) error {
	if (len(dest)+HashLen-1)/HashLen > 255 {
		return ErrExpandTooLong
	}
	r := hkdf.Expand(newBlake2s, prk, context)
	if _, err := io.ReadFull(r, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrExpandTooLong, err)
	}
	return nil
}

// HKDFDerive is extract followed by expand. The intermediate PRK is
// wiped before returning.
func HKDFDerive(dest, salt, ikm, context []byte) error {
	prk := make([]byte, HashLen)
	defer Zeroize(prk)
	if err := HKDFExtract(prk, salt, ikm); err != nil {
		return err
	}
	return HKDFExpand(dest, prk, context)
}

// DeriveKeys slices a single HKDF derivation into count keys of KeySize
// bytes each. The joined output keying material is wiped after the
// split. Callers own the returned keys and are responsible for wiping
// them.
func DeriveKeys(count int, salt, ikm, context []byte) ([][]byte, error) {
	if count <= 0 || count*KeySize > 255*HashLen {
		return nil, ErrExpandTooLong
	}
	okm := make([]byte, count*KeySize)
	defer Zeroize(okm)
	if err := HKDFDerive(okm, salt, ikm, context); err != nil {
		return nil, err
	}
	keys := make([][]byte, count)
	for i := range keys {
		keys[i] = make([]byte, KeySize)
		copy(keys[i], okm[i*KeySize:(i+1)*KeySize])
	}
	return keys, nil
}
