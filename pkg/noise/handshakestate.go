// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import (
	"time"

	"github.com/anchorlock/go-anchorlock/pkg/audit"
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/metrics"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
)

// MaxMessageLen is the Noise ceiling for one message, tokens and
// payload included.
const MaxMessageLen = 65535

// Config describes one side of a handshake. It is not modified and can
// be reused across handshakes that share keys.
type Config struct {
	// Pattern selects the message scripts and premessages.
	Pattern Pattern

	// Initiator is true on the peer that sends the first message.
	Initiator bool

	// Prologue is optional out-of-band context; both sides must supply
	// identical bytes or the first AEAD check fails.
	Prologue []byte

	// StaticKeypair is the local static, required by patterns whose
	// local letter is K or X.
	StaticKeypair *Keypair

	// EphemeralKeypair, when set, is used instead of generating a
	// fresh ephemeral on the first e token.
	EphemeralKeypair *Keypair

	// RemoteStatic is the peer's static public key, required
	// beforehand by patterns whose remote letter is K.
	RemoteStatic []byte

	// RemoteEphemeral is the peer's ephemeral public key when it was
	// communicated out of band.
	RemoteEphemeral []byte

	// PresharedKey is the 32-byte key consumed by psk tokens.
	PresharedKey []byte

	// Recorder, when set, receives the audit entries of every secret
	// container the handshake creates. Defaults to the process log.
	Recorder audit.Recorder
}

// HandshakeState drives one handshake. It is single-owner: calls on it
// are serial by construction, and it must be discarded after either
// completion or the first error.
type HandshakeState struct {
	ss        *symmetricState
	s         *Keypair
	e         *Keypair
	rs        []byte
	re        []byte
	psk       []byte
	initiator bool
	eSent     bool
	reSeen    bool
	messages  [][]token
	pattern   Pattern
	started   time.Time
}

// NewHandshakeState seeds the symmetric state with the protocol name,
// mixes the prologue and the pattern's premessages, and readies the
// message scripts.
func NewHandshakeState(cfg Config) (*HandshakeState, error) {
	if cfg.RemoteStatic != nil && len(cfg.RemoteStatic) != crypto.DHLen {
		return nil, ErrInvalidPublicKey
	}
	if cfg.RemoteEphemeral != nil && len(cfg.RemoteEphemeral) != crypto.DHLen {
		return nil, ErrInvalidPublicKey
	}
	if cfg.PresharedKey != nil && len(cfg.PresharedKey) != crypto.KeySize {
		return nil, ErrPresharedKeyMissing
	}

	var opts []secret.Option
	if cfg.Recorder != nil {
		opts = []secret.Option{secret.WithRecorder(cfg.Recorder)}
	}

	ss := newSymmetricState(cfg.Pattern, opts)
	if err := ss.mixHash(cfg.Prologue); err != nil {
		ss.destroy()
		return nil, err
	}
	if err := cfg.Pattern.mixPremessages(ss, cfg.Initiator, cfg.StaticKeypair, cfg.RemoteStatic); err != nil {
		ss.destroy()
		return nil, err
	}

	h := &HandshakeState{
		ss:        ss,
		s:         cfg.StaticKeypair,
		e:         cfg.EphemeralKeypair,
		initiator: cfg.Initiator,
		messages:  cfg.Pattern.messages(),
		pattern:   cfg.Pattern,
		started:   time.Now(),
	}
	if cfg.RemoteStatic != nil {
		h.rs = append([]byte(nil), cfg.RemoteStatic...)
	}
	if cfg.RemoteEphemeral != nil {
		h.re = append([]byte(nil), cfg.RemoteEphemeral...)
		h.reSeen = true
	}
	if cfg.PresharedKey != nil {
		h.psk = append([]byte(nil), cfg.PresharedKey...)
	}
	return h, nil
}

// Complete reports whether every scripted message has been processed.
func (h *HandshakeState) Complete() bool { return len(h.messages) == 0 }

// Initiator reports whether this side sent the first message.
func (h *HandshakeState) Initiator() bool { return h.initiator }

// RemoteStatic returns the peer's static public key once known, nil
// before.
func (h *HandshakeState) RemoteStatic() []byte {
	return append([]byte(nil), h.rs...)
}

// WriteMessage produces the next handshake message carrying payload.
// When it was the final scripted message, the returned Split holds the
// transport cipher states and channel-binding hash; it is nil before
// then. Any error is fatal to the handshake: call Destroy and start
// over.
func (h *HandshakeState) WriteMessage(payload []byte) ([]byte, *Split, error) {
	if h.Complete() {
		return nil, nil, ErrHandshakeComplete
	}

	script := h.messages[0]
	h.messages = h.messages[1:]

	var msg []byte
	for _, t := range script {
		var err error
		msg, err = h.writeToken(t, msg)
		if err != nil {
			return nil, nil, h.fail(err)
		}
	}

	ciphertext, err := h.ss.encryptAndHash(payload)
	if err != nil {
		return nil, nil, h.fail(err)
	}
	msg = append(msg, ciphertext...)
	if len(msg) > MaxMessageLen {
		crypto.Zeroize(msg)
		return nil, nil, h.fail(ErrMessageTooLong)
	}

	if !h.Complete() {
		return msg, nil, nil
	}
	sp, err := h.ss.split(h.initiator)
	metrics.RecordHandshake(h.pattern.String(), h.started, err)
	if err != nil {
		return nil, nil, err
	}
	return msg, sp, nil
}

// ReadMessage consumes the peer's next handshake message and returns
// its payload. The Split return mirrors WriteMessage. Any error is
// fatal to the handshake.
func (h *HandshakeState) ReadMessage(message []byte) ([]byte, *Split, error) {
	if h.Complete() {
		return nil, nil, ErrHandshakeComplete
	}
	if len(message) > MaxMessageLen {
		return nil, nil, h.fail(ErrMessageTooLong)
	}

	script := h.messages[0]
	h.messages = h.messages[1:]

	head := 0
	for _, t := range script {
		n, err := h.readToken(t, message[head:])
		if err != nil {
			return nil, nil, h.fail(err)
		}
		head += n
	}

	payload, err := h.ss.decryptAndHash(message[head:])
	if err != nil {
		return nil, nil, h.fail(err)
	}

	if !h.Complete() {
		return payload, nil, nil
	}
	sp, err := h.ss.split(h.initiator)
	metrics.RecordHandshake(h.pattern.String(), h.started, err)
	if err != nil {
		crypto.Zeroize(payload)
		return nil, nil, err
	}
	return payload, sp, nil
}

// writeToken appends one token's wire output to msg.
func (h *HandshakeState) writeToken(t token, msg []byte) ([]byte, error) {
	switch t {
	case tokenE:
		if h.eSent {
			return nil, ErrLocalEphemeralExists
		}
		if h.e == nil {
			pair, err := GenerateKeypair(h.ss.opts...)
			if err != nil {
				return nil, err
			}
			h.e = pair
		}
		h.eSent = true
		pub := h.e.Public()
		if err := h.ss.mixHash(pub[:]); err != nil {
			return nil, err
		}
		return append(msg, pub[:]...), nil

	case tokenS:
		if h.s == nil {
			return nil, ErrLocalStaticMissing
		}
		pub := h.s.Public()
		ciphertext, err := h.ss.encryptAndHash(pub[:])
		if err != nil {
			return nil, err
		}
		return append(msg, ciphertext...), nil

	case tokenPSK:
		if len(h.psk) != crypto.KeySize {
			return nil, ErrPresharedKeyMissing
		}
		return msg, h.ss.mixKeyAndHash(h.psk)

	default:
		return msg, h.mixDHToken(t)
	}
}

// readToken consumes one token's wire input, returning the bytes read.
func (h *HandshakeState) readToken(t token, rest []byte) (int, error) {
	switch t {
	case tokenE:
		if h.reSeen {
			return 0, ErrRemoteEphemeralExists
		}
		if len(rest) < crypto.DHLen {
			return 0, ErrMessageTooShort
		}
		h.re = append([]byte(nil), rest[:crypto.DHLen]...)
		h.reSeen = true
		return crypto.DHLen, h.ss.mixHash(h.re)

	case tokenS:
		if h.rs != nil {
			return 0, ErrRemoteStaticExists
		}
		n := crypto.DHLen
		if h.ss.hasKey() {
			n += crypto.TagSize
		}
		if len(rest) < n {
			return 0, ErrMessageTooShort
		}
		pub, err := h.ss.decryptAndHash(rest[:n])
		if err != nil {
			return 0, err
		}
		if len(pub) != crypto.DHLen {
			crypto.Zeroize(pub)
			return 0, ErrInvalidPublicKey
		}
		h.rs = pub
		return n, nil

	case tokenPSK:
		if len(h.psk) != crypto.KeySize {
			return 0, ErrPresharedKeyMissing
		}
		return 0, h.ss.mixKeyAndHash(h.psk)

	default:
		return 0, h.mixDHToken(t)
	}
}

// mixDHToken resolves which keypair and public key a DH token uses on
// this side and mixes the shared secret into ck.
func (h *HandshakeState) mixDHToken(t token) error {
	var (
		local         *Keypair
		remote        []byte
		localMissing  error
		remoteMissing error
	)
	switch {
	case t == tokenEE:
		local, remote = h.e, h.re
		localMissing, remoteMissing = ErrLocalEphemeralMissing, ErrRemoteEphemeralMissing
	case t == tokenSS:
		local, remote = h.s, h.rs
		localMissing, remoteMissing = ErrLocalStaticMissing, ErrRemoteStaticMissing
	case (t == tokenES) == h.initiator:
		// es as initiator or se as responder: DH(e, rs).
		local, remote = h.e, h.rs
		localMissing, remoteMissing = ErrLocalEphemeralMissing, ErrRemoteStaticMissing
	default:
		// se as initiator or es as responder: DH(s, re).
		local, remote = h.s, h.re
		localMissing, remoteMissing = ErrLocalStaticMissing, ErrRemoteEphemeralMissing
	}
	if local == nil {
		return localMissing
	}
	if remote == nil {
		return remoteMissing
	}
	shared, err := local.dh(remote)
	if err != nil {
		return err
	}
	err = h.ss.mixKey(shared[:])
	crypto.Zeroize(shared[:])
	return err
}

// fail records the handshake as failed and passes the error through.
func (h *HandshakeState) fail(err error) error {
	metrics.RecordHandshake(h.pattern.String(), h.started, err)
	return err
}

// Destroy wipes the symmetric state, the generated ephemeral and the
// preshared key. The caller keeps ownership of the static keypair.
func (h *HandshakeState) Destroy() {
	h.ss.destroy()
	if h.e != nil {
		h.e.Destroy()
	}
	crypto.Zeroize(h.psk)
	crypto.Zeroize(h.rs)
	crypto.Zeroize(h.re)
}
