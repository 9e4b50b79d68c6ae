// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package task provides the small scheduling primitives used by the
// audit flusher: a coalescing notifier and a single background task
// runner with graceful-stop and abort semantics.
package task

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyRunning is returned by Start when a task is active.
	ErrAlreadyRunning = errors.New("task: already running")

	// ErrNotRunning is returned by Stop when no task is active.
	ErrNotRunning = errors.New("task: not running")
)

// Notifier is a coalescing wake-up signal. Any number of Notify calls
// between two waits collapse into a single wake-up.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify wakes one waiter. It never blocks.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C returns the channel a waiter selects on.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Wait blocks until notified or the context is done.
func (n *Notifier) Wait(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fn is the body of a background task. It must return promptly after
// the stop channel closes (graceful shutdown) or the context is
// cancelled (abort).
type Fn func(ctx context.Context, stop <-chan struct{}) error

// Runner owns at most one background goroutine at a time.
type Runner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	stop   chan struct{}
	done   chan error
}

// NewRunner creates an idle Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Start launches fn on its own goroutine.
func (r *Runner) Start(fn Fn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.stop = make(chan struct{})
	r.done = make(chan error, 1)

	stop, done := r.stop, r.done
	go func() {
		done <- fn(ctx, stop)
	}()
	return nil
}

// Running reports whether a task is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// Stop requests a graceful shutdown and waits for the task to return,
// yielding its error.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.done == nil {
		r.mu.Unlock()
		return ErrNotRunning
	}
	stop, done, cancel := r.stop, r.done, r.cancel
	r.stop, r.done, r.cancel = nil, nil, nil
	r.mu.Unlock()

	close(stop)
	err := <-done
	cancel()
	return err
}

// Abort cancels the task immediately without waiting for it to finish
// any in-flight work. Work buffered for the task may be lost.
func (r *Runner) Abort() {
	r.mu.Lock()
	if r.done == nil {
		r.mu.Unlock()
		return
	}
	done, cancel := r.done, r.cancel
	r.stop, r.done, r.cancel = nil, nil, nil
	r.mu.Unlock()

	cancel()
	<-done
}
