// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import "github.com/anchorlock/go-anchorlock/pkg/crypto"

// Pattern names a Noise handshake pattern. The second letter describes
// what the initiator knows about the responder's static key and the
// first letter the reverse: N none, K known beforehand, X transmitted
// during the handshake.
type Pattern int

const (
	// NN authenticates nobody; both peers stay anonymous.
	NN Pattern = iota
	// KK authenticates both peers through statics known beforehand.
	KK
	// XX authenticates both peers, statics exchanged in flight.
	XX
	// NK authenticates the responder only, its static known beforehand.
	NK
	// KN authenticates the initiator only, its static known beforehand.
	KN
	// XK authenticates the responder; the initiator may identify itself.
	XK
	// KX authenticates the initiator; the responder transmits its static.
	KX
	// NX leaves the initiator anonymous; the responder transmits its static.
	NX
	// XN leaves the responder anonymous; the initiator transmits its static.
	XN
)

func (p Pattern) String() string {
	switch p {
	case NN:
		return "NN"
	case KK:
		return "KK"
	case XX:
		return "XX"
	case NK:
		return "NK"
	case KN:
		return "KN"
	case XK:
		return "XK"
	case KX:
		return "KX"
	case NX:
		return "NX"
	case XN:
		return "XN"
	}
	return "unknown"
}

// protocolName returns the 32-byte value that seeds ck and h: the
// protocol name itself right-padded with zeros when it fits, its
// BLAKE2s hash otherwise.
func (p Pattern) protocolName() [crypto.HashLen]byte {
	name := []byte("Noise_" + p.String() + "_25519_ChaChaPoly_BLAKE2s")
	if len(name) <= crypto.HashLen {
		var out [crypto.HashLen]byte
		copy(out[:], name)
		return out
	}
	return crypto.Hash(name)
}

// token is one step of a message pattern.
type token int

const (
	tokenE token = iota
	tokenS
	tokenEE
	tokenES
	tokenSE
	tokenSS
	tokenPSK
)

// messages returns the per-message token scripts for the pattern,
// initiator first.
func (p Pattern) messages() [][]token {
	switch p {
	case NN:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE},
		}
	case KK:
		return [][]token{
			{tokenE, tokenES, tokenSS},
			{tokenE, tokenEE, tokenSE},
		}
	case XX:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenS, tokenES},
			{tokenS, tokenSE},
		}
	case NK:
		return [][]token{
			{tokenE, tokenES},
			{tokenE, tokenEE},
		}
	case KN:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenSE},
		}
	case XK:
		return [][]token{
			{tokenE, tokenES},
			{tokenE, tokenEE},
			{tokenS, tokenSE},
		}
	case KX:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenSE, tokenS, tokenES},
		}
	case NX:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenS, tokenES},
		}
	case XN:
		return [][]token{
			{tokenE},
			{tokenE, tokenEE},
			{tokenS, tokenSE},
		}
	}
	return nil
}

// mixPremessages hashes the statically-known public keys into the
// transcript before the first message. When both sides contribute, the
// initiator's key is hashed first.
func (p Pattern) mixPremessages(ss *symmetricState, initiator bool, s *Keypair, rs []byte) error {
	switch p {
	case NN, XX, NX, XN:
		return nil
	case NK, XK:
		// Initiator knows the responder's static.
		if initiator {
			return mixRemote(ss, rs)
		}
		return mixLocal(ss, s)
	case KN, KX:
		// Responder knows the initiator's static.
		if initiator {
			return mixLocal(ss, s)
		}
		return mixRemote(ss, rs)
	case KK:
		if initiator {
			if err := mixLocal(ss, s); err != nil {
				return err
			}
			return mixRemote(ss, rs)
		}
		if err := mixRemote(ss, rs); err != nil {
			return err
		}
		return mixLocal(ss, s)
	}
	return nil
}

func mixLocal(ss *symmetricState, s *Keypair) error {
	if s == nil {
		return ErrLocalStaticMissing
	}
	pub := s.Public()
	return ss.mixHash(pub[:])
}

func mixRemote(ss *symmetricState, rs []byte) error {
	if len(rs) != crypto.DHLen {
		return ErrRemoteStaticMissing
	}
	return ss.mixHash(rs)
}
