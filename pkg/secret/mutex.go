// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import "context"

// mutex is a channel-based lock so callers holding a context can
// suspend at the lock instead of blocking (the WithCtx variants).
type mutex chan struct{}

func newMutex() mutex {
	return make(mutex, 1)
}

func (m mutex) lock() {
	m <- struct{}{}
}

func (m mutex) lockCtx(ctx context.Context) error {
	select {
	case m <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m mutex) unlock() {
	<-m
}
