// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import (
	"fmt"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
)

const keypairTag = "Local Private DH Key"

// Keypair holds a Curve25519 keypair with the private half in a
// protected container and the public half cached in the clear.
type Keypair struct {
	private *secret.FixedSecret[secret.Ephemeral]
	public  [crypto.DHLen]byte
}

// GenerateKeypair creates a fresh Curve25519 keypair from the CSPRNG.
func GenerateKeypair(opts ...secret.Option) (*Keypair, error) {
	var private [crypto.DHLen]byte
	if err := crypto.FillRandom(private[:]); err != nil {
		return nil, fmt.Errorf("noise: generate keypair: %w", err)
	}
	return KeypairFromPrivate(private[:], opts...)
}

// KeypairFromPrivate builds a keypair from existing private key bytes,
// wiping the caller's buffer.
func KeypairFromPrivate(private []byte, opts ...secret.Option) (*Keypair, error) {
	if len(private) != crypto.DHLen {
		return nil, ErrInvalidPublicKey
	}
	var priv [crypto.DHLen]byte
	copy(priv[:], private)
	crypto.Zeroize(private)
	public, err := crypto.PublicFromPrivate(&priv)
	if err != nil {
		crypto.Zeroize(priv[:])
		return nil, fmt.Errorf("noise: derive public key: %w", err)
	}
	return &Keypair{
		private: secret.NewFixed[secret.Ephemeral](priv[:], keypairTag, opts...),
		public:  public,
	}, nil
}

// Public returns the public half.
func (k *Keypair) Public() [crypto.DHLen]byte { return k.public }

// dh computes the Curve25519 shared secret with a remote public key.
func (k *Keypair) dh(remote []byte) ([crypto.DHLen]byte, error) {
	var shared, pub, priv [crypto.DHLen]byte
	if len(remote) != crypto.DHLen {
		return shared, ErrInvalidPublicKey
	}
	copy(pub[:], remote)
	err := k.private.With(func(value []byte) error {
		copy(priv[:], value)
		defer crypto.Zeroize(priv[:])
		var err error
		shared, err = crypto.DH(&priv, &pub)
		return err
	})
	if err != nil {
		return shared, err
	}
	return shared, nil
}

// Destroy wipes the private half.
func (k *Keypair) Destroy() {
	k.private.Destroy()
}
