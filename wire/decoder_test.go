// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire_test

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/blinklabs-io/goneo/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStream(t *testing.T, count int) ([]byte, []*wire.Envelope) {
	t.Helper()
	var stream []byte
	var envs []*wire.Envelope
	for i := range count {
		payload := bytes.Repeat([]byte{byte(i)}, 10*i+3)
		env, err := wire.NewEnvelope(testMagic, fmt.Sprintf("cmd%d", i), payload)
		require.NoError(t, err)
		envs = append(envs, env)
		stream = append(stream, env.Encode()...)
	}
	return stream, envs
}

// drain pulls every available envelope out of the decoder
func drain(t *testing.T, dec *wire.Decoder) []*wire.Envelope {
	t.Helper()
	var ret []*wire.Envelope
	for {
		env, err := dec.Next()
		if errors.Is(err, wire.ErrIncomplete) {
			return ret
		}
		require.NoError(t, err)
		ret = append(ret, env)
	}
}

func TestDecoderIncomplete(t *testing.T) {
	dec := wire.NewDecoder(testMagic)
	_, err := dec.Next()
	assert.ErrorIs(t, err, wire.ErrIncomplete)
	_, _ = dec.Write(make([]byte, wire.HeaderSize-1))
	_, err = dec.Next()
	assert.ErrorIs(t, err, wire.ErrIncomplete)
	_, ok := dec.Pending()
	assert.False(t, ok)
	assert.Equal(t, wire.HeaderSize-1, dec.Buffered())
}

func TestDecoderPendingProgress(t *testing.T) {
	env, err := wire.NewEnvelope(testMagic, wire.CmdBlock, make([]byte, 76))
	require.NoError(t, err)
	raw := env.Encode()
	dec := wire.NewDecoder(testMagic)
	_, _ = dec.Write(raw[:50])
	_, err = dec.Next()
	require.ErrorIs(t, err, wire.ErrIncomplete)
	hdr, ok := dec.Pending()
	require.True(t, ok)
	assert.Equal(t, wire.CmdBlock, hdr.Command)
	assert.Equal(t, uint32(76), hdr.Length)
	assert.Equal(t, 50, dec.Progress())
	// Nothing consumed while waiting
	assert.Equal(t, 50, dec.Buffered())
	_, _ = dec.Write(raw[50:])
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, env.Payload, got.Payload)
	assert.Equal(t, 0, dec.Progress())
}

func TestDecoderFragmentationEquivalence(t *testing.T) {
	stream, envs := buildStream(t, 5)
	partial, err := wire.NewEnvelope(testMagic, wire.CmdHeaders, make([]byte, 40))
	require.NoError(t, err)
	partialRaw := partial.Encode()[:wire.HeaderSize+17]
	stream = append(stream, partialRaw...)

	// Whole stream at once
	whole := wire.NewDecoder(testMagic)
	_, _ = whole.Write(stream)
	expected := drain(t, whole)
	require.Len(t, expected, len(envs))

	rng := rand.New(rand.NewSource(1))
	for round := range 200 {
		dec := wire.NewDecoder(testMagic)
		var got []*wire.Envelope
		for pos := 0; pos < len(stream); {
			n := 1 + rng.Intn(40)
			if round%10 == 0 {
				// Byte-at-a-time delivery
				n = 1
			}
			end := min(pos+n, len(stream))
			_, _ = dec.Write(stream[pos:end])
			got = append(got, drain(t, dec)...)
			pos = end
		}
		require.Len(t, got, len(expected), "round %d", round)
		for i := range expected {
			assert.Equal(t, expected[i].Header, got[i].Header, "round %d envelope %d", round, i)
			assert.Equal(t, expected[i].Payload, got[i].Payload, "round %d envelope %d", round, i)
		}
		// The partial remainder is kept untouched
		assert.Equal(t, len(partialRaw), dec.Buffered())
		hdr, ok := dec.Pending()
		require.True(t, ok)
		assert.Equal(t, wire.CmdHeaders, hdr.Command)
	}
}

func TestDecoderChecksumMismatch(t *testing.T) {
	bad, err := wire.NewEnvelope(testMagic, wire.CmdInv, []byte("garbage"))
	require.NoError(t, err)
	bad.Checksum ^= 0xffffffff
	good, err := wire.NewEnvelope(testMagic, wire.CmdVerack, nil)
	require.NoError(t, err)

	dec := wire.NewDecoder(testMagic)
	_, _ = dec.Write(bad.Encode())
	_, _ = dec.Write(good.Encode()[:10])
	_, err = dec.Next()
	assert.ErrorIs(t, err, wire.ErrChecksumMismatch)
	// The corrupt envelope is consumed and the partial one stays buffered
	assert.Equal(t, 10, dec.Buffered())
	_, err = dec.Next()
	assert.ErrorIs(t, err, wire.ErrIncomplete)
	_, _ = dec.Write(good.Encode()[10:])
	env, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, wire.CmdVerack, env.Command)
}

func TestDecoderInvalidMagicResync(t *testing.T) {
	foreign, err := wire.NewEnvelope(0xdeadbeef, wire.CmdTx, []byte("other network"))
	require.NoError(t, err)
	good, err := wire.NewEnvelope(testMagic, wire.CmdGetAddr, nil)
	require.NoError(t, err)

	dec := wire.NewDecoder(testMagic)
	_, _ = dec.Write(foreign.Encode())
	_, _ = dec.Write(good.Encode())
	var envs []*wire.Envelope
	var magicErrors int
	for {
		env, err := dec.Next()
		if errors.Is(err, wire.ErrIncomplete) {
			break
		}
		if errors.Is(err, wire.ErrInvalidMagic) {
			magicErrors++
			continue
		}
		require.NoError(t, err)
		envs = append(envs, env)
	}
	assert.Equal(t, 1, magicErrors)
	require.Len(t, envs, 1)
	assert.Equal(t, wire.CmdGetAddr, envs[0].Command)
	assert.Equal(t, 0, dec.Buffered())
}

func TestDecoderPayloadTooLarge(t *testing.T) {
	env, err := wire.NewEnvelope(testMagic, wire.CmdBlock, nil)
	require.NoError(t, err)
	env.Length = wire.MaxPayloadSize + 1
	dec := wire.NewDecoder(testMagic)
	_, _ = dec.Write(env.Encode())
	_, err = dec.Next()
	assert.ErrorIs(t, err, wire.ErrPayloadTooLarge)
	_, ok := dec.Pending()
	assert.False(t, ok)
	assert.Less(t, dec.Buffered(), wire.HeaderSize)
}

func TestDecoderInvalidCommand(t *testing.T) {
	env, err := wire.NewEnvelope(testMagic, "ver\x00ack", nil)
	require.NoError(t, err)
	good, err := wire.NewEnvelope(testMagic, wire.CmdVerack, nil)
	require.NoError(t, err)
	dec := wire.NewDecoder(testMagic)
	_, _ = dec.Write(env.Encode())
	_, _ = dec.Write(good.Encode())
	_, err = dec.Next()
	assert.ErrorIs(t, err, wire.ErrInvalidCommand)
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, wire.CmdVerack, got.Command)
}
