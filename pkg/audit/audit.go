// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package audit provides a bounded, asynchronously flushed audit log.
// Secret containers record every access to it; a background task
// drains full buffers to durable storage.
//
// The log holds two FIFO buffers. Entries land in the live buffer; when
// that reaches the threshold watermark (2/3 of capacity), a batch is
// moved to the flushing buffer and the background flusher is notified.
// When both buffers are full, recording fails with ErrBuffersFull so
// the caller can refuse the operation that would have gone unaudited.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anchorlock/go-anchorlock/pkg/metrics"
	"github.com/anchorlock/go-anchorlock/pkg/task"
)

// DefaultCapacity is the buffer capacity of the process-wide log.
const DefaultCapacity = 1000

// Entry is one audit record.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string

	// Timestamp is the wall-clock time of the recorded operation,
	// millisecond precision.
	Timestamp time.Time

	// Operation names what was done ("access", "mutable access", "copy").
	Operation string

	// Tag is the human tag of the container that was touched.
	Tag string

	// AccessCount is the container's access counter after the operation.
	AccessCount uint64
}

// NewEntry creates an Entry stamped now.
func NewEntry(operation, tag string, accessCount uint64) Entry {
	return Entry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().Truncate(time.Millisecond),
		Operation:   operation,
		Tag:         tag,
		AccessCount: accessCount,
	}
}

// String renders the entry as a single log line.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %q %s #%d",
		e.Timestamp.Format(time.RFC3339Nano), e.ID, e.Tag, e.Operation, e.AccessCount)
}

// Recorder accepts audit entries. The Log is the canonical
// implementation; tests substitute their own.
type Recorder interface {
	Record(e Entry) error
}

// Log is the bounded two-buffer audit log.
type Log struct {
	mu   sync.Mutex // guards live
	live []Entry

	fmu      sync.Mutex // guards flushing
	flushing []Entry

	notifier *task.Notifier
	runner   *task.Runner

	capacity  int
	threshold int
	target    int
}

var _ Recorder = (*Log)(nil)

// New creates a Log with the given buffer capacity. The threshold
// watermark is 2/3 of capacity and the drain target 3/4, leaving a
// quarter of the live buffer in memory after each drain.
func New(capacity int) *Log {
	return &Log{
		live:      make([]Entry, 0, capacity),
		flushing:  make([]Entry, 0, capacity),
		notifier:  task.NewNotifier(),
		runner:    task.NewRunner(),
		capacity:  capacity,
		threshold: capacity * 2 / 3,
		target:    capacity * 3 / 4,
	}
}

var (
	defaultLog  *Log
	defaultOnce sync.Once
)

// Default returns the process-wide log.
func Default() *Log {
	defaultOnce.Do(func() {
		defaultLog = New(DefaultCapacity)
	})
	return defaultLog
}

// Record appends an entry to the live buffer and, at the threshold
// watermark, drains a batch toward the flusher. It fails with
// ErrBuffersFull when the flushing buffer cannot take the batch.
func (l *Log) Record(e Entry) error {
	l.mu.Lock()
	l.live = append(l.live, e)
	hitThreshold := len(l.live) >= l.threshold
	l.mu.Unlock()

	metrics.AuditEntriesTotal.Inc()

	if hitThreshold {
		if err := l.Flush(); err != nil {
			metrics.AuditDroppedTotal.Inc()
			return fmt.Errorf("%w: %v", ErrBuffersFull, err)
		}
	}
	return nil
}

// Flush moves up to target entries from the live buffer into the
// flushing buffer and wakes the background flusher. It fails with
// ErrFlushingFull when the flushing buffer has no room at all.
func (l *Log) Flush() error {
	l.fmu.Lock()
	defer l.fmu.Unlock()

	room := l.capacity - len(l.flushing)
	if room == 0 {
		return ErrFlushingFull
	}

	l.mu.Lock()
	n := min(l.target, len(l.live), room)
	l.flushing = append(l.flushing, l.live[:n]...)
	l.live = append(l.live[:0], l.live[n:]...)
	l.mu.Unlock()

	l.notifier.Notify()
	return nil
}

// Size returns the live and flushing buffer sizes.
func (l *Log) Size() (live, flushing int) {
	l.mu.Lock()
	live = len(l.live)
	l.mu.Unlock()
	l.fmu.Lock()
	flushing = len(l.flushing)
	l.fmu.Unlock()
	return live, flushing
}

// drain takes everything out of the flushing buffer.
func (l *Log) drain() []Entry {
	l.fmu.Lock()
	defer l.fmu.Unlock()
	if len(l.flushing) == 0 {
		return nil
	}
	batch := make([]Entry, len(l.flushing))
	copy(batch, l.flushing)
	l.flushing = l.flushing[:0]
	return batch
}
