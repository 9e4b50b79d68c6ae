// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import "github.com/anchorlock/go-anchorlock/pkg/crypto"

// SecureRef owns a scratch copy of sensitive bytes and wipes it on
// Close. Container accesses run user callbacks over a SecureRef copy
// with Close deferred, so the scratch is zeroed on every exit path,
// panics included.
type SecureRef struct {
	data []byte
}

// NewSecureRef takes ownership of data.
func NewSecureRef(data []byte) *SecureRef {
	return &SecureRef{data: data}
}

// Bytes returns the owned scratch. The slice is invalid after Close.
func (r *SecureRef) Bytes() []byte {
	return r.data
}

// Close wipes the scratch.
func (r *SecureRef) Close() {
	crypto.Zeroize(r.data)
	r.data = nil
}
