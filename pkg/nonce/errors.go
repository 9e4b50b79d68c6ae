// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package nonce

import "errors"

var (
	// ErrCounterExpired indicates the counter passed half its range.
	// The owning key must be rotated before further use.
	ErrCounterExpired = errors.New("nonce: counter expired")

	// ErrTimestampExpired indicates the nonce outlived its granularity
	// lifetime. The owning key must be rotated before further use.
	ErrTimestampExpired = errors.New("nonce: timestamp expired")

	// ErrFillRandom indicates the CSPRNG failed while refreshing the
	// random portion of a RandomTimestamp nonce.
	ErrFillRandom = errors.New("nonce: random fill failure")
)
