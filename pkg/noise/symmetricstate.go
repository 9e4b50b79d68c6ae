// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import (
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
)

// Nonce context bytes for the three key roles.
var (
	ctxCipherKey = [4]byte{'C', 'K', 'E', 'Y'}
	ctxSendKey   = [4]byte{'S', 'K', 'E', 'Y'}
	ctxRecvKey   = [4]byte{'R', 'K', 'E', 'Y'}
)

const cipherKeyTag = "Cipherstate Key"

// Split is the terminal result of a handshake: one cipher state per
// direction plus the transcript hash for channel binding. Send always
// belongs to the local peer regardless of role.
type Split struct {
	Send *CipherState
	Recv *CipherState
	Hash [crypto.HashLen]byte
}

// Destroy wipes both cipher states.
func (s *Split) Destroy() {
	s.Send.Destroy()
	s.Recv.Destroy()
}

// symmetricState carries the chaining key ck and transcript hash h
// through the handshake, both in protected containers.
type symmetricState struct {
	cs   *CipherState
	ck   *secret.FixedSecret[secret.Ephemeral]
	h    *secret.FixedSecret[secret.Ephemeral]
	opts []secret.Option
}

func newSymmetricState(p Pattern, opts []secret.Option) *symmetricState {
	seed := p.protocolName()
	ckSeed := append([]byte(nil), seed[:]...)
	hSeed := append([]byte(nil), seed[:]...)
	return &symmetricState{
		cs:   newCipherState(opts),
		ck:   secret.NewFixed[secret.Ephemeral](ckSeed, "ck", opts...),
		h:    secret.NewFixed[secret.Ephemeral](hSeed, "h", opts...),
		opts: opts,
	}
}

func (s *symmetricState) hasKey() bool { return s.cs.HasKey() }

// mixHash folds data into the transcript: h = BLAKE2s(h || data).
func (s *symmetricState) mixHash(data []byte) error {
	return s.h.WithMut(func(h []byte) error {
		sum := crypto.Hash(h, data)
		copy(h, sum[:])
		crypto.Zeroize(sum[:])
		return nil
	})
}

// mixKey derives [ck, temp_k] from HKDF(ck, ikm) and installs temp_k
// as the cipher key at counter 0.
func (s *symmetricState) mixKey(inputKeyMaterial []byte) error {
	return s.ck.WithMut(func(ck []byte) error {
		keys, err := crypto.DeriveKeys(2, ck, inputKeyMaterial, nil)
		if err != nil {
			return err
		}
		copy(ck, keys[0])
		crypto.Zeroize(keys[0])
		s.cs.initializeKey(keys[1], cipherKeyTag, ctxCipherKey)
		return nil
	})
}

// mixKeyAndHash derives [ck, temp_h, temp_k]: temp_h is folded into the
// transcript and temp_k becomes the cipher key. Used by the psk token.
func (s *symmetricState) mixKeyAndHash(inputKeyMaterial []byte) error {
	var tempH [crypto.KeySize]byte
	err := s.ck.WithMut(func(ck []byte) error {
		keys, err := crypto.DeriveKeys(3, ck, inputKeyMaterial, nil)
		if err != nil {
			return err
		}
		copy(ck, keys[0])
		crypto.Zeroize(keys[0])
		copy(tempH[:], keys[1])
		crypto.Zeroize(keys[1])
		s.cs.initializeKey(keys[2], cipherKeyTag, ctxCipherKey)
		return nil
	})
	if err != nil {
		return err
	}
	err = s.mixHash(tempH[:])
	crypto.Zeroize(tempH[:])
	return err
}

// encryptAndHash seals plaintext with the transcript as associated
// data, then folds the ciphertext into the transcript. Identity (plus
// the fold) before the first mixKey.
func (s *symmetricState) encryptAndHash(plaintext []byte) ([]byte, error) {
	var ciphertext []byte
	err := s.h.With(func(h []byte) error {
		var err error
		ciphertext, err = s.cs.seal(h, plaintext)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.mixHash(ciphertext); err != nil {
		crypto.Zeroize(ciphertext)
		return nil, err
	}
	return ciphertext, nil
}

// decryptAndHash opens ciphertext with the transcript as associated
// data, then folds the ciphertext (not the plaintext) into the
// transcript.
func (s *symmetricState) decryptAndHash(ciphertext []byte) ([]byte, error) {
	var plaintext []byte
	err := s.h.With(func(h []byte) error {
		var err error
		plaintext, err = s.cs.open(h, ciphertext)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.mixHash(ciphertext); err != nil {
		crypto.Zeroize(plaintext)
		return nil, err
	}
	return plaintext, nil
}

// handshakeHash returns the current transcript hash.
func (s *symmetricState) handshakeHash() ([crypto.HashLen]byte, error) {
	var out [crypto.HashLen]byte
	err := s.h.With(func(h []byte) error {
		copy(out[:], h)
		return nil
	})
	return out, err
}

// split derives the two transport keys from ck. The first HKDF output
// keys the initiator-to-responder direction (context "SKEY"), the
// second the reverse (context "RKEY"); responders receive the pair
// swapped so Split.Send is always theirs to send with.
func (s *symmetricState) split(initiator bool) (*Split, error) {
	hash, err := s.handshakeHash()
	if err != nil {
		return nil, err
	}
	var c1, c2 *CipherState
	err = s.ck.With(func(ck []byte) error {
		keys, err := crypto.DeriveKeys(2, ck, nil, nil)
		if err != nil {
			return err
		}
		c1 = newCipherState(s.opts)
		c1.initializeKey(keys[0], "Noise Send Key", ctxSendKey)
		c2 = newCipherState(s.opts)
		c2.initializeKey(keys[1], "Noise Recv Key", ctxRecvKey)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if initiator {
		return &Split{Send: c1, Recv: c2, Hash: hash}, nil
	}
	return &Split{Send: c2, Recv: c1, Hash: hash}, nil
}

// destroy wipes ck, h and any installed cipher key.
func (s *symmetricState) destroy() {
	s.cs.Destroy()
	s.ck.Destroy()
	s.h.Destroy()
}
