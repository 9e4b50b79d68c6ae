// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchorlock/go-anchorlock/pkg/nonce"
)

var (
	nonceKind        string
	nonceContext     string
	nonceCounter     uint64
	nonceGranularity string
	nonceAdvance     int
)

var nonceCmd = &cobra.Command{
	Use:   "nonce",
	Short: "Generate and inspect typed nonces",
	Long: `Generate a nonce of the given kind and print its wire form after each
advance. Counter kinds refuse to advance past half their range;
timestamped kinds refuse once their creation epoch ages out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(nonceContext) != nonce.ContextSize {
			return fmt.Errorf("--context must be exactly %d bytes", nonce.ContextSize)
		}
		var context [nonce.ContextSize]byte
		copy(context[:], nonceContext)

		g, err := parseGranularity(nonceGranularity)
		if err != nil {
			return err
		}

		var n nonce.Nonce
		switch nonceKind {
		case "monotonic":
			n = nonce.NewMonotonic(context, nonceCounter)
		case "monotonic-timestamp":
			n = nonce.NewMonotonicTimestamp(context, uint32(nonceCounter), g)
		case "random-timestamp":
			n, err = nonce.NewRandomTimestamp(context, g)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown nonce kind %q", nonceKind)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", n.Kind(), n.Hex())
		for i := 0; i < nonceAdvance; i++ {
			if err := n.Next(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", n.Kind(), n.Hex())
		}
		return nil
	},
}

func init() {
	nonceCmd.Flags().StringVar(&nonceKind, "kind", "monotonic",
		"nonce kind (monotonic, monotonic-timestamp, random-timestamp)")
	nonceCmd.Flags().StringVar(&nonceContext, "context", "TEST",
		"4-byte context")
	nonceCmd.Flags().Uint64Var(&nonceCounter, "counter", 0,
		"initial counter for counter kinds")
	nonceCmd.Flags().StringVar(&nonceGranularity, "granularity", "s",
		"timestamp granularity (s, ms, us)")
	nonceCmd.Flags().IntVar(&nonceAdvance, "advance", 0,
		"number of advances to print")
}

func parseGranularity(s string) (nonce.Granularity, error) {
	switch s {
	case "s":
		return nonce.Seconds, nil
	case "ms":
		return nonce.Milliseconds, nil
	case "us":
		return nonce.Microseconds, nil
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}
