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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/goneo/payload"
	"github.com/blinklabs-io/goneo/wire"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// EncodeMessage returns the wire encoding of a message. A nil msg produces an
// empty payload. It panics on errors, which makes it usable inline.
func EncodeMessage(networkMagic uint32, command string, msg any) []byte {
	return EncodeMessageWithCodec(payload.NewCodec(), networkMagic, command, msg)
}

// EncodeMessageWithCodec is like EncodeMessage, but encodes the payload with
// the specified codec
func EncodeMessageWithCodec(codec payload.Codec, networkMagic uint32, command string, msg any) []byte {
	var data []byte
	if msg != nil {
		var err error
		data, err = codec.Encode(msg)
		if err != nil {
			panic(fmt.Sprintf("error encoding %s payload: %s", command, err))
		}
	}
	env, err := wire.NewEnvelope(networkMagic, command, data)
	if err != nil {
		panic(fmt.Sprintf("error building %s envelope: %s", command, err))
	}
	return env.Encode()
}

// DecodePayload decodes the payload of a sent envelope. It panics on errors
func DecodePayload[T any](env *wire.Envelope, typeName string) *T {
	ret, err := payload.DecodeAs[T](payload.NewCodec(), env.Payload, typeName)
	if err != nil {
		panic(fmt.Sprintf("error decoding %s payload: %s", env.Command, err))
	}
	return ret
}
