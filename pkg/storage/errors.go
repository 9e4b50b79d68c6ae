// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package storage

import "errors"

var (
	// ErrClosed is returned when using a closed backend.
	ErrClosed = errors.New("storage: closed")

	// ErrNotFound is returned when a key is not present.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidKey is returned for an empty or path-escaping key.
	ErrInvalidKey = errors.New("storage: invalid key")
)
