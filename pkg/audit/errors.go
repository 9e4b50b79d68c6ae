// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package audit

import "errors"

var (
	// ErrBuffersFull is returned by Record when both the live and the
	// flushing buffers are exhausted. The recording caller must refuse
	// the operation that would have gone unaudited.
	ErrBuffersFull = errors.New("audit: buffers full")

	// ErrFlushingFull is returned by Flush when the flushing buffer
	// has no room.
	ErrFlushingFull = errors.New("audit: flushing buffer full")
)
