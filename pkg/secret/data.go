// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

import (
	"strings"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
)

// State name prefixes. Each transition strips the old prefix and
// prepends the new one, so audit lines carry the state history of a
// piece of material.
const (
	tagPlain         = "<Plain>"
	tagEncrypted     = "<Encrypted>"
	tagAuthenticated = "<Authenticated>"
)

func retag(tag, from, to string) string {
	return to + strings.TrimPrefix(tag, from)
}

// PlainData is unencrypted material. It is the only state that can be
// encrypted; EncryptedData and AuthenticatedData are the only states
// that can be decrypted. The distinct types enforce the pipeline at
// compile time.
type PlainData struct {
	inner *DynamicSecret[Ephemeral]
}

// NewPlainData wraps data (wiping the caller's buffer) under the tag
// "<Plain>tag".
func NewPlainData(data []byte, tag string, opts ...Option) *PlainData {
	return &PlainData{inner: NewDynamic[Ephemeral](data, tagPlain+tag, opts...)}
}

// Len returns the plaintext size in bytes.
func (p *PlainData) Len() int { return p.inner.Len() }

// Tag returns the state-prefixed tag.
func (p *PlainData) Tag() string { return p.inner.Tag() }

// Bytes returns an audited caller-owned copy of the plaintext.
func (p *PlainData) Bytes() ([]byte, error) { return p.inner.Copy() }

// Destroy wipes the plaintext.
func (p *PlainData) Destroy() { p.inner.Destroy() }

// Encrypt seals the plaintext with key and empty associated data,
// consuming p. On success p is destroyed and the ciphertext carries
// the tag "<Encrypted>..." plus the nonce that sealed it.
func (p *PlainData) Encrypt(key *Key) (*EncryptedData, error) {
	dest, n, err := p.seal(key, nil)
	if err != nil {
		return nil, err
	}
	out := &EncryptedData{
		inner: NewDynamic[Ephemeral](dest, retag(p.Tag(), tagPlain, tagEncrypted)),
		nonce: n,
	}
	p.Destroy()
	return out, nil
}

// EncryptAuthenticated seals the plaintext with key, binding
// associatedData into the AEAD tag; the data is retained alongside the
// ciphertext. Consumes p.
func (p *PlainData) EncryptAuthenticated(key *Key, associatedData []byte) (*AuthenticatedData, error) {
	dest, n, err := p.seal(key, associatedData)
	if err != nil {
		return nil, err
	}
	out := &AuthenticatedData{
		inner: NewDynamic[Ephemeral](dest, retag(p.Tag(), tagPlain, tagAuthenticated)),
		nonce: n,
		ad:    append([]byte(nil), associatedData...),
	}
	p.Destroy()
	return out, nil
}

func (p *PlainData) seal(key *Key, associatedData []byte) ([]byte, [crypto.NonceSize]byte, error) {
	var n [crypto.NonceSize]byte
	dest := make([]byte, p.Len()+crypto.TagSize)
	err := p.inner.With(func(plaintext []byte) error {
		return key.Encrypt(dest, plaintext, &n, associatedData)
	})
	if err != nil {
		crypto.Zeroize(dest)
		return nil, n, err
	}
	return dest, n, nil
}

// EncryptedData is sealed material plus the nonce that sealed it.
type EncryptedData struct {
	inner *DynamicSecret[Ephemeral]
	nonce [crypto.NonceSize]byte
}

// EncryptedFromPacket rebuilds EncryptedData from the packet form
// ciphertext || nonce, wiping the input buffer. The tag becomes
// "<Encrypted>tag".
func EncryptedFromPacket(packet []byte, tag string, opts ...Option) (*EncryptedData, error) {
	body, n, err := splitPacket(packet)
	if err != nil {
		return nil, err
	}
	return &EncryptedData{
		inner: NewDynamic[Ephemeral](body, tagEncrypted+tag, opts...),
		nonce: n,
	}, nil
}

// Len returns the ciphertext size (tag included) in bytes.
func (e *EncryptedData) Len() int { return e.inner.Len() }

// Tag returns the state-prefixed tag.
func (e *EncryptedData) Tag() string { return e.inner.Tag() }

// Nonce returns the nonce that sealed this data.
func (e *EncryptedData) Nonce() [crypto.NonceSize]byte { return e.nonce }

// Packet renders the wire form ciphertext || nonce.
func (e *EncryptedData) Packet() ([]byte, error) { return packet(e.inner, e.nonce) }

// Destroy wipes the ciphertext.
func (e *EncryptedData) Destroy() { e.inner.Destroy() }

// Decrypt opens the ciphertext with key and empty associated data,
// consuming e. The result carries the tag "<Plain>...".
func (e *EncryptedData) Decrypt(key *Key) (*PlainData, error) {
	dest, err := open(e.inner, key, e.nonce, nil)
	if err != nil {
		return nil, err
	}
	out := &PlainData{inner: NewDynamic[Ephemeral](dest, retag(e.Tag(), tagEncrypted, tagPlain))}
	e.Destroy()
	return out, nil
}

// AuthenticatedData is sealed material plus its nonce and the
// associated data bound at seal time.
type AuthenticatedData struct {
	inner *DynamicSecret[Ephemeral]
	nonce [crypto.NonceSize]byte
	ad    []byte
}

// AuthenticatedFromPacket rebuilds AuthenticatedData from the packet
// form ciphertext || nonce, wiping the input buffer. The associated
// data is not part of the packet; the verifier supplies it to
// DecryptVerified.
func AuthenticatedFromPacket(packet []byte, tag string, opts ...Option) (*AuthenticatedData, error) {
	body, n, err := splitPacket(packet)
	if err != nil {
		return nil, err
	}
	return &AuthenticatedData{
		inner: NewDynamic[Ephemeral](body, tagAuthenticated+tag, opts...),
		nonce: n,
	}, nil
}

// Len returns the ciphertext size (tag included) in bytes.
func (a *AuthenticatedData) Len() int { return a.inner.Len() }

// Tag returns the state-prefixed tag.
func (a *AuthenticatedData) Tag() string { return a.inner.Tag() }

// Nonce returns the nonce that sealed this data.
func (a *AuthenticatedData) Nonce() [crypto.NonceSize]byte { return a.nonce }

// AssociatedData returns the associated data bound at seal time, nil
// when rebuilt from a packet.
func (a *AuthenticatedData) AssociatedData() []byte { return a.ad }

// Packet renders the wire form ciphertext || nonce.
func (a *AuthenticatedData) Packet() ([]byte, error) { return packet(a.inner, a.nonce) }

// Destroy wipes the ciphertext.
func (a *AuthenticatedData) Destroy() { a.inner.Destroy() }

// DecryptVerified opens the ciphertext with key; the associated data
// presented must match the one bound at seal time or the AEAD tag
// check fails. Consumes a on success.
func (a *AuthenticatedData) DecryptVerified(key *Key, associatedData []byte) (*PlainData, error) {
	dest, err := open(a.inner, key, a.nonce, associatedData)
	if err != nil {
		return nil, err
	}
	out := &PlainData{inner: NewDynamic[Ephemeral](dest, retag(a.Tag(), tagAuthenticated, tagPlain))}
	a.Destroy()
	return out, nil
}

func open(inner *DynamicSecret[Ephemeral], key *Key, n [crypto.NonceSize]byte, associatedData []byte) ([]byte, error) {
	if inner.Len() < crypto.TagSize {
		return nil, ErrInvalidLength
	}
	dest := make([]byte, inner.Len()-crypto.TagSize)
	err := inner.With(func(ciphertext []byte) error {
		return key.Decrypt(dest, ciphertext, n, associatedData)
	})
	if err != nil {
		crypto.Zeroize(dest)
		return nil, err
	}
	return dest, nil
}

func packet(inner *DynamicSecret[Ephemeral], n [crypto.NonceSize]byte) ([]byte, error) {
	out := make([]byte, inner.Len()+crypto.NonceSize)
	err := inner.With(func(body []byte) error {
		copy(out, body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	copy(out[len(out)-crypto.NonceSize:], n[:])
	return out, nil
}

// splitPacket separates the trailing nonce from the body and wipes the
// input.
func splitPacket(packet []byte) ([]byte, [crypto.NonceSize]byte, error) {
	var n [crypto.NonceSize]byte
	if len(packet) < crypto.NonceSize {
		return nil, n, ErrInvalidLength
	}
	split := len(packet) - crypto.NonceSize
	copy(n[:], packet[split:])
	body := append([]byte(nil), packet[:split]...)
	crypto.Zeroize(packet)
	return body, n, nil
}
