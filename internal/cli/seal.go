// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/anchorlock/go-anchorlock/internal/config"
	"github.com/anchorlock/go-anchorlock/pkg/audit"
	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/logging"
	"github.com/anchorlock/go-anchorlock/pkg/nonce"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
	"github.com/anchorlock/go-anchorlock/pkg/storage"
)

var (
	sealSalt string
	sealAD   string
	sealIn   string
	sealOut  string
)

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Encrypt a file with a password-derived key",
	Long: `Derive a key from a password and Argon2id, encrypt the input file
with ChaCha20-Poly1305, and write the ciphertext packet (ciphertext,
tag, then the 12-byte nonce). Every key access is audited; the audit
log flushes to the configured storage path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sealSalt == "" {
			return errors.New("--salt is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg).Component("seal")

		stopFlusher, err := startFlusher(cfg)
		if err != nil {
			return err
		}
		defer stopFlusher(log)

		key, err := passwordKey(sealSalt)
		if err != nil {
			return err
		}
		defer key.Destroy()

		input, err := os.ReadFile(sealIn)
		if err != nil {
			return err
		}
		data := secret.NewPlainData(input, sealIn)

		sealed, err := data.EncryptAuthenticated(key, []byte(sealAD))
		if err != nil {
			return err
		}
		defer sealed.Destroy()
		packet, err := sealed.Packet()
		if err != nil {
			return err
		}
		if err := os.WriteFile(sealOut, packet, 0o600); err != nil {
			return err
		}
		log.Info("sealed", "in", sealIn, "out", sealOut, "bytes", len(packet))
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Decrypt a file sealed with a password-derived key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sealSalt == "" {
			return errors.New("--salt is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg).Component("open")

		stopFlusher, err := startFlusher(cfg)
		if err != nil {
			return err
		}
		defer stopFlusher(log)

		key, err := passwordKey(sealSalt)
		if err != nil {
			return err
		}
		defer key.Destroy()

		packet, err := os.ReadFile(sealIn)
		if err != nil {
			return err
		}
		sealed, err := secret.AuthenticatedFromPacket(packet, sealIn)
		if err != nil {
			return err
		}
		data, err := sealed.DecryptVerified(key, []byte(sealAD))
		if err != nil {
			sealed.Destroy()
			return err
		}
		defer data.Destroy()
		plaintext, err := data.Bytes()
		if err != nil {
			return err
		}
		defer crypto.Zeroize(plaintext)
		if err := os.WriteFile(sealOut, plaintext, 0o600); err != nil {
			return err
		}
		log.Info("opened", "in", sealIn, "out", sealOut, "bytes", len(plaintext))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{sealCmd, openCmd} {
		c.Flags().StringVar(&sealSalt, "salt", "", "KDF salt (required)")
		c.Flags().StringVar(&sealAD, "ad", "", "associated data bound into the seal")
		c.Flags().StringVarP(&sealIn, "in", "i", "", "input file")
		c.Flags().StringVarP(&sealOut, "out", "o", "", "output file")
		_ = c.MarkFlagRequired("in")
		_ = c.MarkFlagRequired("out")
	}
}

// passwordKey derives the AEAD key from the environment or prompted
// password under the given salt.
func passwordKey(salt string) (*secret.Key, error) {
	password, err := readPassword()
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(password)

	pdk := make([]byte, crypto.KeySize)
	if err := crypto.DerivePDK(pdk, password, []byte(salt)); err != nil {
		crypto.Zeroize(pdk)
		return nil, err
	}
	n, err := nonce.NewRandomTimestamp([4]byte{'S', 'E', 'A', 'L'}, nonce.Seconds)
	if err != nil {
		crypto.Zeroize(pdk)
		return nil, err
	}
	return secret.KeyFromBytes(pdk, "password key", n), nil
}

// startFlusher routes the process audit log into the configured file
// backend and returns the shutdown hook.
func startFlusher(cfg *config.Config) (func(*logging.Logger), error) {
	backend, err := storage.NewFile(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	log := audit.Default()
	if err := log.Start(audit.NewBackendSink(backend, cfg.Audit.FlushPath), cfg.Audit.FlushRate); err != nil {
		backend.Close()
		return nil, err
	}
	return func(l *logging.Logger) {
		l.MaybeError(log.Stop())
		l.MaybeError(backend.Close())
	}, nil
}
