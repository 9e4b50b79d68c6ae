// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import "errors"

var (
	// ErrHandshakeComplete indicates a write or read after the final
	// handshake message; the caller should be using the split cipher
	// states instead.
	ErrHandshakeComplete = errors.New("noise: handshake already complete")

	// ErrLocalStaticMissing indicates the pattern requires a local
	// static keypair that was not supplied.
	ErrLocalStaticMissing = errors.New("noise: local static key missing")

	// ErrRemoteStaticMissing indicates the pattern requires the remote
	// static public key before it has been learned or supplied.
	ErrRemoteStaticMissing = errors.New("noise: remote static key missing")

	// ErrLocalEphemeralMissing indicates a DH token ran before the
	// local ephemeral was generated.
	ErrLocalEphemeralMissing = errors.New("noise: local ephemeral key missing")

	// ErrRemoteEphemeralMissing indicates a DH token ran before the
	// remote ephemeral was received.
	ErrRemoteEphemeralMissing = errors.New("noise: remote ephemeral key missing")

	// ErrLocalEphemeralExists guards against generating a second
	// ephemeral within one handshake.
	ErrLocalEphemeralExists = errors.New("noise: local ephemeral key already set")

	// ErrRemoteEphemeralExists guards against a peer sending two
	// ephemerals within one handshake.
	ErrRemoteEphemeralExists = errors.New("noise: remote ephemeral key already set")

	// ErrRemoteStaticExists guards against a peer sending two statics
	// within one handshake.
	ErrRemoteStaticExists = errors.New("noise: remote static key already set")

	// ErrPresharedKeyMissing indicates a psk token ran without a
	// 32-byte preshared key configured.
	ErrPresharedKeyMissing = errors.New("noise: preshared key missing or not 32 bytes")

	// ErrMessageTooLong indicates a handshake or transport message
	// would exceed the 65535-byte Noise limit.
	ErrMessageTooLong = errors.New("noise: message exceeds 65535 bytes")

	// ErrMessageTooShort indicates a received handshake message ended
	// before its token outputs did.
	ErrMessageTooShort = errors.New("noise: message shorter than its token outputs")

	// ErrInvalidPublicKey indicates a public key that is not DHLen
	// bytes or is the all-zero point.
	ErrInvalidPublicKey = errors.New("noise: invalid public key")
)
