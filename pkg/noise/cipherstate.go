// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import (
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/metrics"
	"github.com/anchorlock/go-anchorlock/pkg/nonce"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
)

// CipherState is an AEAD key plus its counter nonce. Before the first
// mixKey it has no key and passes data through unchanged. During the
// handshake both peers advance their counters in lockstep, so no nonce
// travels on the wire; transport messages after split carry the full
// nonce in the packet tail instead.
type CipherState struct {
	key  *secret.Key
	opts []secret.Option
}

func newCipherState(opts []secret.Option) *CipherState {
	return &CipherState{opts: opts}
}

// HasKey reports whether a key has been installed.
func (c *CipherState) HasKey() bool { return c.key != nil }

// initializeKey installs k (wiping the caller's buffer) under a fresh
// counter-0 monotonic nonce with the given context bytes.
func (c *CipherState) initializeKey(k []byte, tag string, context [4]byte) {
	if c.key != nil {
		c.key.Destroy()
	}
	c.key = secret.KeyFromBytes(k, tag, nonce.NewMonotonic(context, 0), c.opts...)
}

// SetNonce replaces the counter. Receivers that learn the incoming
// counter out of band use this to jump ahead. No-op without a key.
func (c *CipherState) SetNonce(counter uint64) error {
	if c.key == nil {
		return nil
	}
	return c.key.SetCounter(counter)
}

// NonceBytes returns the current nonce wire form, zero without a key.
func (c *CipherState) NonceBytes() [crypto.NonceSize]byte {
	if c.key == nil {
		return [crypto.NonceSize]byte{}
	}
	return c.key.NonceBytes()
}

// seal encrypts plaintext at the current counter and advances it,
// returning ciphertext || tag. Identity without a key.
func (c *CipherState) seal(associatedData, plaintext []byte) ([]byte, error) {
	if c.key == nil {
		return append([]byte(nil), plaintext...), nil
	}
	dest := make([]byte, len(plaintext)+crypto.TagSize)
	var n [crypto.NonceSize]byte
	if err := c.key.Encrypt(dest, plaintext, &n, associatedData); err != nil {
		crypto.Zeroize(dest)
		return nil, err
	}
	return dest, nil
}

// open decrypts ciphertext || tag at the current counter and advances
// it on success. Identity without a key.
func (c *CipherState) open(associatedData, ciphertext []byte) ([]byte, error) {
	if c.key == nil {
		return append([]byte(nil), ciphertext...), nil
	}
	if len(ciphertext) < crypto.TagSize {
		return nil, ErrMessageTooShort
	}
	dest := make([]byte, len(ciphertext)-crypto.TagSize)
	if err := c.key.Decrypt(dest, ciphertext, c.key.NonceBytes(), associatedData); err != nil {
		crypto.Zeroize(dest)
		return nil, err
	}
	if err := c.key.AdvanceNonce(); err != nil {
		crypto.Zeroize(dest)
		return nil, err
	}
	return dest, nil
}

// EncryptWithAD seals a transport message, consuming (wiping) the
// plaintext buffer. The result is the packet ciphertext||tag||nonce.
// Identity without a key.
func (c *CipherState) EncryptWithAD(associatedData, plaintext []byte) ([]byte, error) {
	if c.key == nil {
		return append([]byte(nil), plaintext...), nil
	}
	data := secret.NewPlainData(plaintext, "Cipher State Msg Send", c.opts...)
	sealed, err := data.EncryptAuthenticated(c.key, associatedData)
	if err != nil {
		data.Destroy()
		return nil, err
	}
	defer sealed.Destroy()
	return sealed.Packet()
}

// DecryptWithAD opens a transport packet (ciphertext||tag||nonce),
// advancing the local counter on success so both ends stay in step.
// The packet buffer is wiped. Identity without a key.
func (c *CipherState) DecryptWithAD(associatedData, packet []byte) ([]byte, error) {
	if c.key == nil {
		return append([]byte(nil), packet...), nil
	}
	data, err := secret.AuthenticatedFromPacket(packet, "Cipher State Msg Recv", c.opts...)
	if err != nil {
		return nil, err
	}
	plain, err := data.DecryptVerified(c.key, associatedData)
	if err != nil {
		data.Destroy()
		return nil, err
	}
	defer plain.Destroy()
	if err := c.key.AdvanceNonce(); err != nil {
		return nil, err
	}
	return plain.Bytes()
}

// Rekey derives a replacement key per the Noise specification:
// k = ENCRYPT(k, maxnonce, "", 32 zeros) truncated to 32 bytes. The
// counter carries over. A counter past half range refuses with the
// nonce's rotation error; the caller must run a new handshake instead.
func (c *CipherState) Rekey() error {
	if c.key == nil {
		return nil
	}
	if err := c.key.NeedsRotation(); err != nil {
		return err
	}

	cur := c.key.NonceBytes()
	var max [crypto.NonceSize]byte
	copy(max[:nonce.ContextSize], cur[:nonce.ContextSize])
	for i := nonce.ContextSize; i < crypto.NonceSize; i++ {
		max[i] = 0xFF
	}

	buf := make([]byte, crypto.KeySize+crypto.TagSize)
	zeros := make([]byte, crypto.KeySize)
	if err := c.key.EncryptAt(buf, zeros, max, nil); err != nil {
		crypto.Zeroize(buf)
		return err
	}

	next := secret.KeyFromBytes(buf[:crypto.KeySize], c.key.Tag(), c.key.Nonce(), c.opts...)
	crypto.Zeroize(buf)
	c.key.Destroy()
	c.key = next
	metrics.RekeysTotal.Inc()
	return nil
}

// Destroy wipes the key, if any.
func (c *CipherState) Destroy() {
	if c.key != nil {
		c.key.Destroy()
	}
}
