// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	dirPerms         = 0700
	defaultFilePerms = 0600
)

// File is a Backend that stores each key as a file under a root
// directory. Keys may contain forward slashes to form a hierarchy;
// they must not escape the root.
type File struct {
	mu   sync.RWMutex
	root string
}

var _ Backend = (*File)(nil)

// NewFile creates a file backend rooted at root, creating the
// directory with owner-only permissions when missing.
func NewFile(root string) (*File, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root directory", ErrInvalidKey)
	}
	if err := os.MkdirAll(root, dirPerms); err != nil {
		return nil, fmt.Errorf("storage: create root directory: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root directory: %w", err)
	}
	return &File{root: abs}, nil
}

func (f *File) keyPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	p := filepath.Join(f.root, filepath.FromSlash(key))
	p = filepath.Clean(p)
	if p != f.root && !strings.HasPrefix(p, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes root", ErrInvalidKey, key)
	}
	return p, nil
}

// Get implements Backend.
func (f *File) Get(key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read key %q: %w", key, err)
	}
	return data, nil
}

// Put implements Backend.
func (f *File) Put(key string, value []byte, opts *Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		return fmt.Errorf("storage: create directory for key %q: %w", key, err)
	}
	perms := fs.FileMode(defaultFilePerms)
	if opts != nil && opts.Permissions != 0 {
		perms = opts.Permissions
	}
	if err := os.WriteFile(p, value, perms); err != nil {
		return fmt.Errorf("storage: write key %q: %w", key, err)
	}
	return nil
}

// Append opens the key's file in append mode and adds value to it,
// creating the file when missing. Audit segments use this to grow a
// log file without rewriting it.
func (f *File) Append(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		return fmt.Errorf("storage: create directory for key %q: %w", key, err)
	}
	file, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerms)
	if err != nil {
		return fmt.Errorf("storage: open key %q: %w", key, err)
	}
	defer file.Close()
	if _, err := file.Write(value); err != nil {
		return fmt.Errorf("storage: append key %q: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: stat key %q: %w", key, err)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("storage: delete key %q: %w", key, err)
	}
	return nil
}

// List implements Backend.
func (f *File) List(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists implements Backend.
func (f *File) Exists(key string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, err := f.keyPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat key %q: %w", key, err)
	}
	return true, nil
}

// Close implements Backend. The file backend holds no open handles
// between operations.
func (f *File) Close() error {
	return nil
}
