// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorlock/go-anchorlock/pkg/storage"
)

func TestExportImportFixed(t *testing.T) {
	backend := storage.NewMemory()
	defer backend.Close()
	rec := &memRecorder{}

	s := NewFixed[Encrypted]([]byte("sealed key material"), "vault-key", WithRecorder(rec))
	require.NoError(t, ExportFixed(backend, "keys/vault-key", s))

	loaded, err := ImportFixed(backend, "keys/vault-key", "vault-key", WithRecorder(rec))
	require.NoError(t, err)

	assert.True(t, s.Equal(loaded))

	ops := make([]string, 0, len(rec.entries))
	for _, e := range rec.entries {
		ops = append(ops, e.Operation)
	}
	assert.Contains(t, ops, opExport)
	assert.Contains(t, ops, opImport)
}

func TestExportImportDynamic(t *testing.T) {
	backend := storage.NewMemory()
	defer backend.Close()
	rec := &memRecorder{}

	s := NewDynamic[Encrypted]([]byte(`{"user":"root"}`), "creds", WithRecorder(rec))
	require.NoError(t, ExportDynamic(backend, "secrets/creds", s))

	loaded, err := ImportDynamic(backend, "secrets/creds", "creds", WithRecorder(rec))
	require.NoError(t, err)

	data, err := loaded.Copy()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"user":"root"}`), data)
}

func TestImportMissingKey(t *testing.T) {
	backend := storage.NewMemory()
	defer backend.Close()

	_, err := ImportFixed(backend, "keys/absent", "absent", WithRecorder(&memRecorder{}))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
