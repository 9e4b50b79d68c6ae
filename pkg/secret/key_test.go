// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/nonce"
)

const testKeyHex = "4dfc93bf2e50d3f1256fb0550f8d560bee787e80fb4efe3a7c74d9e62ff25755"

func testKey(t *testing.T, n nonce.Nonce) *Key {
	t.Helper()
	raw, err := crypto.FromHex(testKeyHex)
	require.NoError(t, err)
	return KeyFromBytes(raw, "test dek", n, WithRecorder(&memRecorder{}))
}

func TestKeyEncryptKnownVector(t *testing.T) {
	// A nonce whose wire form is 01 x 12: context 01010101 and a
	// counter of 0x0101010101010101.
	n := nonce.NewMonotonic([4]byte{1, 1, 1, 1}, 0x0101010101010101)
	k := testKey(t, n)

	plaintext := []byte("secret message")
	dest := make([]byte, len(plaintext)+crypto.TagSize)
	var used [crypto.NonceSize]byte
	require.NoError(t, k.Encrypt(dest, plaintext, &used, []byte("Key|Test-Enc-Dec")))

	assert.Equal(t, bytes.Repeat([]byte{1}, crypto.NonceSize), used[:])
	assert.Equal(t,
		"1d3e27b6249f975eb66f6c04a4635ba982095548576754f9959960876514",
		crypto.ToHex(dest))

	recovered := make([]byte, len(plaintext))
	require.NoError(t, k.Decrypt(recovered, dest, used, []byte("Key|Test-Enc-Dec")))
	assert.Equal(t, plaintext, recovered)
}

func TestKeyStampThenAdvance(t *testing.T) {
	k := testKey(t, nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, 0))

	var first, second [crypto.NonceSize]byte
	dest := make([]byte, 1+crypto.TagSize)
	require.NoError(t, k.Encrypt(dest, []byte("a"), &first, nil))
	require.NoError(t, k.Encrypt(dest, []byte("b"), &second, nil))

	// The first call stamped counter 0 and left the key at counter 1.
	assert.Equal(t, "544553540000000000000000", crypto.ToHex(first[:]))
	assert.Equal(t, "544553540000000000000001", crypto.ToHex(second[:]))
	current := k.NonceBytes()
	assert.Equal(t, "544553540000000000000002", crypto.ToHex(current[:]))
}

func TestKeyConcurrentEncryptNeverRepeatsNonce(t *testing.T) {
	k := testKey(t, nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, 0))

	const workers, perWorker = 8, 25
	seen := make(chan [crypto.NonceSize]byte, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				dest := make([]byte, 5+crypto.TagSize)
				var used [crypto.NonceSize]byte
				if err := k.Encrypt(dest, []byte("hello"), &used, nil); err == nil {
					seen <- used
				}
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[[crypto.NonceSize]byte]struct{})
	count := 0
	for n := range seen {
		unique[n] = struct{}{}
		count++
	}
	assert.Equal(t, workers*perWorker, count)
	assert.Len(t, unique, count)
}

func TestKeyRefusesExhaustedNonce(t *testing.T) {
	k := testKey(t, nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, ^uint64(0)))

	dest := make([]byte, 1+crypto.TagSize)
	var used [crypto.NonceSize]byte
	err := k.Encrypt(dest, []byte("x"), &used, nil)
	assert.ErrorIs(t, err, nonce.ErrCounterExpired)
	assert.ErrorIs(t, k.NeedsRotation(), nonce.ErrCounterExpired)
	// No ciphertext was produced.
	assert.Equal(t, make([]byte, len(dest)), dest)
}

func TestKeySetCounter(t *testing.T) {
	k := testKey(t, nonce.NewMonotonic([4]byte{'C', 'K', 'E', 'Y'}, 0))
	require.NoError(t, k.SetCounter(7))
	b := k.NonceBytes()
	assert.Equal(t, "434b4559"+"0000000000000007", crypto.ToHex(b[:]))

	ts := testKey(t, nonce.NewMonotonicTimestamp([4]byte{'C', 'K', 'E', 'Y'}, 0, nonce.Seconds))
	assert.ErrorIs(t, ts.SetCounter(7), ErrNonceKind)
}

func TestKeyCloneAndEqual(t *testing.T) {
	k := testKey(t, nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, 0))
	c := k.Clone()
	assert.True(t, k.Equal(c))

	// Advancing one key's nonce breaks equality even though the
	// material matches.
	dest := make([]byte, 1+crypto.TagSize)
	var used [crypto.NonceSize]byte
	require.NoError(t, k.Encrypt(dest, []byte("x"), &used, nil))
	assert.False(t, k.Equal(c))
}

func TestRandomKey(t *testing.T) {
	a, err := RandomKey("a", nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, 0), WithRecorder(&memRecorder{}))
	require.NoError(t, err)
	b, err := RandomKey("b", nonce.NewMonotonic([4]byte{'T', 'E', 'S', 'T'}, 0), WithRecorder(&memRecorder{}))
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
}
