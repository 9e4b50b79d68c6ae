// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package cli implements the anchorlock command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/anchorlock/go-anchorlock/internal/config"
	"github.com/anchorlock/go-anchorlock/pkg/logging"
)

var (
	configFile string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "anchorlock",
	Short: "anchorlock - audited secret containers and Noise handshakes",
	Long: `anchorlock provides a command-line interface to the go-anchorlock
privacy toolkit: Argon2id/HKDF key derivation, typed nonces, audited
secret containers with an AEAD pipeline, and Noise protocol handshakes
over Curve25519 + ChaCha20-Poly1305 + BLAKE2s.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default searches ., $HOME/.anchorlock, /etc/anchorlock)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(nonceCmd)
	rootCmd.AddCommand(handshakeCmd)
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(metricsCmd)
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

// newLogger builds the command logger, honoring --verbose over the
// configured level.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level).Component("cli")
}
