// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package noise

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorlock/go-anchorlock/pkg/audit"
	"github.com/anchorlock/go-anchorlock/pkg/nonce"
	"github.com/anchorlock/go-anchorlock/pkg/secret"
)

// nopRecorder keeps handshake audit traffic out of the process log.
type nopRecorder struct{}

func (nopRecorder) Record(audit.Entry) error { return nil }

var rec = nopRecorder{}

// peerConfigs builds a matched initiator/responder pair for the
// pattern, generating statics and distributing the pre-known publics.
func peerConfigs(t *testing.T, p Pattern) (Config, Config) {
	t.Helper()
	iniStatic, err := GenerateKeypair(secret.WithRecorder(rec))
	require.NoError(t, err)
	respStatic, err := GenerateKeypair(secret.WithRecorder(rec))
	require.NoError(t, err)

	ini := Config{Pattern: p, Initiator: true, StaticKeypair: iniStatic, Recorder: rec}
	resp := Config{Pattern: p, StaticKeypair: respStatic, Recorder: rec}

	switch p {
	case KK:
		iniPub, respPub := iniStatic.Public(), respStatic.Public()
		ini.RemoteStatic = respPub[:]
		resp.RemoteStatic = iniPub[:]
	case NK, XK:
		respPub := respStatic.Public()
		ini.RemoteStatic = respPub[:]
	case KN, KX:
		iniPub := iniStatic.Public()
		resp.RemoteStatic = iniPub[:]
	}
	return ini, resp
}

// exchange runs the full script between two handshake states, checking
// the per-message payloads arrive intact, and returns both splits.
func exchange(t *testing.T, ini, resp *HandshakeState) (*Split, *Split) {
	t.Helper()
	var iniSplit, respSplit *Split
	writer, reader := ini, resp
	writerSplit, readerSplit := &iniSplit, &respSplit

	for i := 0; !ini.Complete() || !resp.Complete(); i++ {
		payload := []byte(fmt.Sprintf("handshake payload %d", i))

		msg, ws, err := writer.WriteMessage(payload)
		require.NoError(t, err)
		got, rs, err := reader.ReadMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		*writerSplit = ws
		*readerSplit = rs
		writer, reader = reader, writer
		writerSplit, readerSplit = readerSplit, writerSplit
	}
	require.NotNil(t, iniSplit)
	require.NotNil(t, respSplit)
	return iniSplit, respSplit
}

// roundtrip pushes one transport message each way through the splits.
func roundtrip(t *testing.T, a, b *Split) {
	t.Helper()
	pkt, err := a.Send.EncryptWithAD([]byte("transport"), []byte("ping"))
	require.NoError(t, err)
	pt, err := b.Recv.DecryptWithAD([]byte("transport"), pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), pt)

	pkt, err = b.Send.EncryptWithAD([]byte("transport"), []byte("pong"))
	require.NoError(t, err)
	pt, err = a.Recv.DecryptWithAD([]byte("transport"), pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), pt)
}

func TestAllPatterns(t *testing.T) {
	for _, p := range []Pattern{NN, KK, XX, NK, KN, XK, KX, NX, XN} {
		t.Run(p.String(), func(t *testing.T) {
			iniCfg, respCfg := peerConfigs(t, p)
			ini, err := NewHandshakeState(iniCfg)
			require.NoError(t, err)
			resp, err := NewHandshakeState(respCfg)
			require.NoError(t, err)
			defer ini.Destroy()
			defer resp.Destroy()

			iniSplit, respSplit := exchange(t, ini, resp)
			defer iniSplit.Destroy()
			defer respSplit.Destroy()

			assert.Equal(t, iniSplit.Hash, respSplit.Hash)
			roundtrip(t, iniSplit, respSplit)
		})
	}
}

func TestAnonymousPeersDeriveSharedChannel(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{Pattern: NN, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()

	msg1, sp, err := ini.WriteMessage([]byte("hello"))
	require.NoError(t, err)
	assert.Nil(t, sp)
	got, sp, err := resp.ReadMessage(msg1)
	require.NoError(t, err)
	assert.Nil(t, sp)
	assert.Equal(t, []byte("hello"), got)

	msg2, respSplit, err := resp.WriteMessage([]byte("world"))
	require.NoError(t, err)
	require.NotNil(t, respSplit)
	got, iniSplit, err := ini.ReadMessage(msg2)
	require.NoError(t, err)
	require.NotNil(t, iniSplit)
	assert.Equal(t, []byte("world"), got)

	assert.Equal(t, iniSplit.Hash, respSplit.Hash)
	assert.NotEqual(t, [32]byte{}, iniSplit.Hash)
	roundtrip(t, iniSplit, respSplit)
}

func TestLearnedRemoteStatic(t *testing.T) {
	iniCfg, respCfg := peerConfigs(t, XX)
	ini, err := NewHandshakeState(iniCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()

	exchange(t, ini, resp)

	iniPub := iniCfg.StaticKeypair.Public()
	respPub := respCfg.StaticKeypair.Public()
	assert.Equal(t, respPub[:], ini.RemoteStatic())
	assert.Equal(t, iniPub[:], resp.RemoteStatic())
}

func TestWriteAfterCompleteRefused(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{Pattern: NN, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()
	exchange(t, ini, resp)

	_, _, err = ini.WriteMessage(nil)
	assert.ErrorIs(t, err, ErrHandshakeComplete)
	_, _, err = resp.ReadMessage([]byte{1})
	assert.ErrorIs(t, err, ErrHandshakeComplete)
}

func TestMissingStaticRefused(t *testing.T) {
	t.Run("premessage", func(t *testing.T) {
		_, err := NewHandshakeState(Config{Pattern: KK, Initiator: true, Recorder: rec})
		assert.ErrorIs(t, err, ErrLocalStaticMissing)
	})

	t.Run("s token", func(t *testing.T) {
		iniCfg, respCfg := peerConfigs(t, XX)
		iniCfg.StaticKeypair = nil
		ini, err := NewHandshakeState(iniCfg)
		require.NoError(t, err)
		resp, err := NewHandshakeState(respCfg)
		require.NoError(t, err)
		defer ini.Destroy()
		defer resp.Destroy()

		msg1, _, err := ini.WriteMessage(nil)
		require.NoError(t, err)
		_, _, err = resp.ReadMessage(msg1)
		require.NoError(t, err)
		msg2, _, err := resp.WriteMessage(nil)
		require.NoError(t, err)
		_, _, err = ini.ReadMessage(msg2)
		require.NoError(t, err)

		// Third message needs the initiator static it does not have.
		_, _, err = ini.WriteMessage(nil)
		assert.ErrorIs(t, err, ErrLocalStaticMissing)
	})
}

func TestPrologueMismatchAborts(t *testing.T) {
	ini, err := NewHandshakeState(Config{
		Pattern: NN, Initiator: true, Prologue: []byte("channel A"), Recorder: rec,
	})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{
		Pattern: NN, Prologue: []byte("channel B"), Recorder: rec,
	})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()

	msg1, _, err := ini.WriteMessage(nil)
	require.NoError(t, err)
	_, _, err = resp.ReadMessage(msg1)
	require.NoError(t, err)
	msg2, _, err := resp.WriteMessage([]byte("secret"))
	require.NoError(t, err)

	// The diverged transcripts make the first AEAD check fail.
	_, _, err = ini.ReadMessage(msg2)
	assert.Error(t, err)
}

func TestMessageTooLong(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()

	_, _, err = ini.WriteMessage(make([]byte, MaxMessageLen+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestPresharedKeyToken(t *testing.T) {
	psk := make([]byte, 32)
	for i := range psk {
		psk[i] = byte(i)
	}

	ini, err := NewHandshakeState(Config{
		Pattern: NN, Initiator: true, PresharedKey: append([]byte(nil), psk...), Recorder: rec,
	})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{
		Pattern: NN, PresharedKey: append([]byte(nil), psk...), Recorder: rec,
	})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()

	// psk0-modified NN script on both sides.
	script := [][]token{
		{tokenPSK, tokenE},
		{tokenE, tokenEE},
	}
	ini.messages = script
	resp.messages = [][]token{
		append([]token(nil), script[0]...),
		append([]token(nil), script[1]...),
	}

	iniSplit, respSplit := exchange(t, ini, resp)
	defer iniSplit.Destroy()
	defer respSplit.Destroy()
	assert.Equal(t, iniSplit.Hash, respSplit.Hash)
	roundtrip(t, iniSplit, respSplit)
}

func TestPresharedKeyLengthValidated(t *testing.T) {
	_, err := NewHandshakeState(Config{
		Pattern: NN, Initiator: true, PresharedKey: []byte("short"), Recorder: rec,
	})
	assert.ErrorIs(t, err, ErrPresharedKeyMissing)
}

func TestRekeyedStatesStillAgree(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{Pattern: NN, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()
	iniSplit, respSplit := exchange(t, ini, resp)
	defer iniSplit.Destroy()
	defer respSplit.Destroy()

	require.NoError(t, iniSplit.Send.Rekey())
	require.NoError(t, respSplit.Recv.Rekey())

	pkt, err := iniSplit.Send.EncryptWithAD(nil, []byte("after rekey"))
	require.NoError(t, err)
	pt, err := respSplit.Recv.DecryptWithAD(nil, pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte("after rekey"), pt)

	// The other direction never rekeyed and still works.
	pkt, err = respSplit.Send.EncryptWithAD(nil, []byte("old direction"))
	require.NoError(t, err)
	pt, err = iniSplit.Recv.DecryptWithAD(nil, pkt)
	require.NoError(t, err)
	assert.Equal(t, []byte("old direction"), pt)
}

func TestRekeyRefusesExhaustedCounter(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{Pattern: NN, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()
	iniSplit, respSplit := exchange(t, ini, resp)
	defer iniSplit.Destroy()
	defer respSplit.Destroy()

	require.NoError(t, iniSplit.Send.SetNonce(^uint64(0)))
	assert.ErrorIs(t, iniSplit.Send.Rekey(), nonce.ErrCounterExpired)
}

func TestSetNonceJumpsCounter(t *testing.T) {
	cs := newCipherState(nil)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	cs.initializeKey(key, cipherKeyTag, ctxCipherKey)
	defer cs.Destroy()

	require.NoError(t, cs.SetNonce(7))
	n := cs.NonceBytes()
	assert.Equal(t, byte(7), n[11])
	assert.Equal(t, "CKEY", string(n[:4]))
}

func TestTransportCountersStayInStep(t *testing.T) {
	ini, err := NewHandshakeState(Config{Pattern: NN, Initiator: true, Recorder: rec})
	require.NoError(t, err)
	resp, err := NewHandshakeState(Config{Pattern: NN, Recorder: rec})
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()
	iniSplit, respSplit := exchange(t, ini, resp)
	defer iniSplit.Destroy()
	defer respSplit.Destroy()

	for i := 0; i < 5; i++ {
		pkt, err := iniSplit.Send.EncryptWithAD(nil, []byte("tick"))
		require.NoError(t, err)
		pt, err := respSplit.Recv.DecryptWithAD(nil, pkt)
		require.NoError(t, err)
		assert.Equal(t, []byte("tick"), pt)
	}
	assert.Equal(t, iniSplit.Send.NonceBytes(), respSplit.Recv.NonceBytes())
}

func TestTamperedHandshakeMessageAborts(t *testing.T) {
	iniCfg, respCfg := peerConfigs(t, XX)
	ini, err := NewHandshakeState(iniCfg)
	require.NoError(t, err)
	resp, err := NewHandshakeState(respCfg)
	require.NoError(t, err)
	defer ini.Destroy()
	defer resp.Destroy()

	msg1, _, err := ini.WriteMessage(nil)
	require.NoError(t, err)
	_, _, err = resp.ReadMessage(msg1)
	require.NoError(t, err)
	msg2, _, err := resp.WriteMessage(nil)
	require.NoError(t, err)

	// Flip a bit in the encrypted static.
	msg2[40] ^= 0x01
	_, _, err = ini.ReadMessage(msg2)
	assert.Error(t, err)
}

func TestKeypairFromPrivateConsumesInput(t *testing.T) {
	private := make([]byte, 32)
	for i := range private {
		private[i] = byte(i + 1)
	}
	want := append([]byte(nil), private...)

	pair, err := KeypairFromPrivate(private)
	require.NoError(t, err)
	defer pair.Destroy()
	assert.Equal(t, make([]byte, 32), private)

	// Same private bytes give the same public key.
	again, err := KeypairFromPrivate(want)
	require.NoError(t, err)
	defer again.Destroy()
	assert.Equal(t, pair.Public(), again.Public())
}

func TestProtocolNameSeedsDiffer(t *testing.T) {
	seen := map[[32]byte]Pattern{}
	for _, p := range []Pattern{NN, KK, XX, NK, KN, XK, KX, NX, XN} {
		seed := p.protocolName()
		prev, dup := seen[seed]
		assert.False(t, dup, "patterns %s and %s share a seed", prev, p)
		seen[seed] = p
	}
}
