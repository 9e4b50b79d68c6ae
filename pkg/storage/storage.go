// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package storage provides the key-value backends used for durable
// output: exported encrypted secrets and flushed audit segments. All
// implementations are safe for concurrent use.
package storage

import "io/fs"

// Backend is the interface both durable consumers write through.
type Backend interface {
	// Get retrieves the value for the given key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Put stores the value for the given key, overwriting any
	// existing value.
	Put(key string, value []byte, opts *Options) error

	// Delete removes the key. Returns ErrNotFound if it does not
	// exist.
	Delete(key string) error

	// List returns all keys with the given prefix, sorted. An empty
	// prefix returns every key.
	List(prefix string) ([]string, error)

	// Exists reports whether a key is present.
	Exists(key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Options carries optional parameters for Put.
type Options struct {
	// Permissions sets the file mode for file-based backends.
	Permissions fs.FileMode

	// Metadata carries additional key-value pairs; backends may
	// ignore it.
	Metadata map[string]string
}

// DefaultOptions returns Options with owner-only permissions.
func DefaultOptions() *Options {
	return &Options{
		Permissions: 0600,
		Metadata:    make(map[string]string),
	}
}
