// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
)

var (
	deriveSalt    string
	deriveContext string
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive an Argon2id key from a password",
	Long: `Derive a 32-byte password-derived key with Argon2id. The password is
read from the ANCHORLOCK_PASSWORD environment variable or, when unset,
from standard input. With --context the PDK is stretched into an HKDF
subkey for that context instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deriveSalt == "" {
			return errors.New("--salt is required")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		defer crypto.Zeroize(password)

		pdk := make([]byte, crypto.KeySize)
		defer crypto.Zeroize(pdk)
		if err := crypto.DerivePDK(pdk, password, []byte(deriveSalt)); err != nil {
			return err
		}

		out := pdk
		if deriveContext != "" {
			sub := make([]byte, crypto.KeySize)
			defer crypto.Zeroize(sub)
			if err := crypto.HKDFDerive(sub, nil, pdk, []byte(deriveContext)); err != nil {
				return err
			}
			out = sub
		}
		fmt.Fprintln(cmd.OutOrStdout(), crypto.ToHex(out))
		return nil
	},
}

func init() {
	deriveCmd.Flags().StringVar(&deriveSalt, "salt", "", "KDF salt (required)")
	deriveCmd.Flags().StringVar(&deriveContext, "context", "", "HKDF subkey context")
}

// readPassword takes the password from ANCHORLOCK_PASSWORD or one line
// of standard input.
func readPassword() ([]byte, error) {
	if env := os.Getenv("ANCHORLOCK_PASSWORD"); env != "" {
		return []byte(env), nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return nil, errors.New("empty password")
	}
	return []byte(password), nil
}
