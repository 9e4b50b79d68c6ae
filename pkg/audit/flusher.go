// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package audit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/anchorlock/go-anchorlock/pkg/metrics"
)

// flushBurst bounds how many sink writes the flusher may issue
// back-to-back before the limiter applies.
const flushBurst = 8

// Start launches the background flusher draining into sink. Sink
// writes are rate limited to writesPerSecond (0 means unlimited).
// Returns task.ErrAlreadyRunning when a flusher is active.
func (l *Log) Start(sink Sink, writesPerSecond float64) error {
	limit := rate.Inf
	if writesPerSecond > 0 {
		limit = rate.Limit(writesPerSecond)
	}
	limiter := rate.NewLimiter(limit, flushBurst)

	return l.runner.Start(func(ctx context.Context, stop <-chan struct{}) error {
		for {
			if err := l.flushOnce(ctx, sink, limiter); err != nil {
				return err
			}
			select {
			case <-stop:
				// Graceful shutdown: one final drain so nothing that
				// reached the flushing buffer is lost.
				return l.flushOnce(ctx, sink, limiter)
			case <-ctx.Done():
				return ctx.Err()
			case <-l.notifier.C():
			}
		}
	})
}

func (l *Log) flushOnce(ctx context.Context, sink Sink, limiter *rate.Limiter) error {
	batch := l.drain()
	if len(batch) == 0 {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	if err := sink.Write(batch); err != nil {
		return err
	}
	metrics.AuditFlushedTotal.Add(float64(len(batch)))
	return nil
}

// Stop asks the flusher to perform a final drain and waits for it to
// exit.
func (l *Log) Stop() error {
	return l.runner.Stop()
}

// Abort terminates the flusher immediately. Entries sitting in the
// flushing buffer are lost; callers must treat this as data loss.
func (l *Log) Abort() {
	l.runner.Abort()
}
