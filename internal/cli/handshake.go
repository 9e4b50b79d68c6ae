// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchorlock/go-anchorlock/pkg/crypto"
	"github.com/anchorlock/go-anchorlock/pkg/noise"
)

var (
	handshakePattern  string
	handshakePrologue string
)

var handshakeCmd = &cobra.Command{
	Use:   "handshake",
	Short: "Run a local Noise handshake and print the transcript",
	Long: `Run both sides of a Noise handshake in process, printing each
message's size and the resulting channel-binding hash. Static keys are
generated on the fly for patterns that need them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := parsePattern(handshakePattern)
		if err != nil {
			return err
		}

		iniCfg, respCfg, err := demoConfigs(pattern)
		if err != nil {
			return err
		}
		iniCfg.Prologue = []byte(handshakePrologue)
		respCfg.Prologue = []byte(handshakePrologue)

		ini, err := noise.NewHandshakeState(iniCfg)
		if err != nil {
			return err
		}
		defer ini.Destroy()
		resp, err := noise.NewHandshakeState(respCfg)
		if err != nil {
			return err
		}
		defer resp.Destroy()

		out := cmd.OutOrStdout()
		writer, reader := ini, resp
		arrow := "->"
		var iniSplit, respSplit *noise.Split
		for i := 1; !ini.Complete(); i++ {
			msg, ws, err := writer.WriteMessage(nil)
			if err != nil {
				return err
			}
			_, rs, err := reader.ReadMessage(msg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "message %d %s  %d bytes\n", i, arrow, len(msg))
			if ws != nil {
				if writer == ini {
					iniSplit, respSplit = ws, rs
				} else {
					iniSplit, respSplit = rs, ws
				}
			}
			writer, reader = reader, writer
			if arrow == "->" {
				arrow = "<-"
			} else {
				arrow = "->"
			}
		}
		defer iniSplit.Destroy()
		defer respSplit.Destroy()

		fmt.Fprintf(out, "channel binding: %s\n", crypto.ToHex(iniSplit.Hash[:]))

		// Prove the transport keys mirror.
		pkt, err := iniSplit.Send.EncryptWithAD(nil, []byte("ping"))
		if err != nil {
			return err
		}
		pt, err := respSplit.Recv.DecryptWithAD(nil, pkt)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "transport check: %s\n", pt)
		return nil
	},
}

func init() {
	handshakeCmd.Flags().StringVar(&handshakePattern, "pattern", "NN",
		"handshake pattern (NN, KK, XX, NK, KN, XK, KX, NX, XN)")
	handshakeCmd.Flags().StringVar(&handshakePrologue, "prologue", "",
		"out-of-band prologue both sides mix first")
}

func parsePattern(s string) (noise.Pattern, error) {
	for _, p := range []noise.Pattern{
		noise.NN, noise.KK, noise.XX, noise.NK, noise.KN,
		noise.XK, noise.KX, noise.NX, noise.XN,
	} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q", s)
}

// demoConfigs generates throwaway statics and distributes the publics
// the pattern expects each side to know beforehand.
func demoConfigs(p noise.Pattern) (noise.Config, noise.Config, error) {
	ini := noise.Config{Pattern: p, Initiator: true}
	resp := noise.Config{Pattern: p}

	iniStatic, err := noise.GenerateKeypair()
	if err != nil {
		return ini, resp, err
	}
	respStatic, err := noise.GenerateKeypair()
	if err != nil {
		return ini, resp, err
	}
	ini.StaticKeypair = iniStatic
	resp.StaticKeypair = respStatic

	iniPub, respPub := iniStatic.Public(), respStatic.Public()
	switch p {
	case noise.KK:
		ini.RemoteStatic = respPub[:]
		resp.RemoteStatic = iniPub[:]
	case noise.NK, noise.XK:
		ini.RemoteStatic = respPub[:]
	case noise.KN, noise.KX:
		resp.RemoteStatic = iniPub[:]
	}
	return ini, resp, nil
}
