// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"fmt"

	"github.com/anchorlock/go-anchorlock/pkg/storage"
)

// Persistence gate: these functions accept only Encrypted-level
// containers, so an Ephemeral secret cannot reach durable storage by
// construction. There is no runtime level check to bypass.

// ExportFixed writes the contents of an encrypted fixed container to
// the backend under key. The write is audited as an export.
func ExportFixed(backend storage.Backend, key string, s *FixedSecret[Encrypted]) error {
	s.mu.lock()
	return s.access(opExport, false, func(value []byte) error {
		if err := backend.Put(key, value, storage.DefaultOptions()); err != nil {
			return fmt.Errorf("secret: export %q: %w", s.Tag(), err)
		}
		return nil
	})
}

// ImportFixed reads previously exported contents from the backend into
// a new encrypted fixed container.
func ImportFixed(backend storage.Backend, key, tag string, opts ...Option) (*FixedSecret[Encrypted], error) {
	value, err := backend.Get(key)
	if err != nil {
		return nil, fmt.Errorf("secret: import %q: %w", tag, err)
	}
	s := NewFixed[Encrypted](value, tag, opts...)
	count := s.accesses.Add(1)
	if err := s.record(opImport, count); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// ExportDynamic writes the contents of an encrypted dynamic container
// to the backend under key. The write is audited as an export.
func ExportDynamic(backend storage.Backend, key string, s *DynamicSecret[Encrypted]) error {
	s.mu.lock()
	return s.access(opExport, func(value []byte) ([]byte, error) {
		if err := backend.Put(key, value, storage.DefaultOptions()); err != nil {
			return nil, fmt.Errorf("secret: export %q: %w", s.Tag(), err)
		}
		return nil, nil
	})
}

// ImportDynamic reads previously exported contents from the backend
// into a new encrypted dynamic container.
func ImportDynamic(backend storage.Backend, key, tag string, opts ...Option) (*DynamicSecret[Encrypted], error) {
	value, err := backend.Get(key)
	if err != nil {
		return nil, fmt.Errorf("secret: import %q: %w", tag, err)
	}
	s := NewDynamic[Encrypted](value, tag, opts...)
	count := s.accesses.Add(1)
	if err := s.record(opImport, count); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}
