// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package audit

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/anchorlock/go-anchorlock/pkg/storage"
)

// Sink receives drained audit batches. Write must be durable when it
// returns nil; the flusher discards the batch afterwards.
type Sink interface {
	Write(entries []Entry) error
}

func renderBatch(entries []Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriterSink adapts an io.Writer (file, pipe, test buffer) into a Sink,
// one line per entry.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink.
func (s *WriterSink) Write(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(renderBatch(entries)); err != nil {
		return fmt.Errorf("audit: write batch: %w", err)
	}
	return nil
}

// BackendSink writes batches through a storage backend. Backends that
// support appending (the file backend) grow a single segment; others
// get one object per batch, keyed by the first entry's ID.
type BackendSink struct {
	backend storage.Backend
	prefix  string
}

// NewBackendSink creates a BackendSink writing under prefix.
func NewBackendSink(backend storage.Backend, prefix string) *BackendSink {
	return &BackendSink{backend: backend, prefix: prefix}
}

// Write implements Sink.
func (s *BackendSink) Write(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	data := renderBatch(entries)

	if appender, ok := s.backend.(interface{ Append(string, []byte) error }); ok {
		if err := appender.Append(s.prefix+"/log", data); err != nil {
			return fmt.Errorf("audit: append batch: %w", err)
		}
		return nil
	}

	key := fmt.Sprintf("%s/%s", s.prefix, entries[0].ID)
	if err := s.backend.Put(key, data, storage.DefaultOptions()); err != nil {
		return fmt.Errorf("audit: store batch: %w", err)
	}
	return nil
}
