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
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinklabs-io/goneo/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMagic uint32 = 7630401

func TestChecksumEmptyPayload(t *testing.T) {
	// sha256d("") = 5df6e0e2...
	assert.Equal(t, uint32(0xe2e0f65d), wire.Checksum(nil))
	assert.Equal(t, uint32(0xe2e0f65d), wire.Checksum([]byte{}))
}

func TestEnvelopeEncode(t *testing.T) {
	env, err := wire.NewEnvelope(testMagic, wire.CmdVerack, nil)
	require.NoError(t, err)
	assert.Equal(t, wire.HeaderSize, env.Size())
	// magic 0x00746e41 LE, "verack" padded to 12 bytes, length 0, checksum 5df6e0e2
	expected := "416e7400" + "76657261636b000000000000" + "00000000" + "5df6e0e2"
	assert.Equal(t, expected, hex.EncodeToString(env.Encode()))
}

func TestEnvelopeCommandTooLong(t *testing.T) {
	_, err := wire.NewEnvelope(testMagic, "thiscommandistoolong", nil)
	assert.True(t, errors.Is(err, wire.ErrCommandTooLong))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	testDefs := []struct {
		command string
		payload []byte
	}{
		{command: wire.CmdVersion, payload: []byte("hello neo")},
		{command: wire.CmdGetHeaders, payload: make([]byte, 1000)},
		{command: "twelvebytes!", payload: []byte{0x01}},
		{command: wire.CmdVerack, payload: nil},
	}
	for _, testDef := range testDefs {
		env, err := wire.NewEnvelope(testMagic, testDef.command, testDef.payload)
		require.NoError(t, err)
		dec := wire.NewDecoder(testMagic)
		_, _ = dec.Write(env.Encode())
		got, err := dec.Next()
		require.NoError(t, err, "command %s", testDef.command)
		assert.Equal(t, testDef.command, got.Command)
		assert.Equal(t, uint32(len(testDef.payload)), got.Length)
		assert.Equal(t, env.Checksum, got.Checksum)
		assert.Equal(t, len(testDef.payload), len(got.Payload))
		assert.Equal(t, 0, dec.Buffered())
	}
}
