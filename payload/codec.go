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

package payload

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/blinklabs-io/goneo/cbor"
)

var (
	ErrUnknownPayloadType = errors.New("unknown payload type")
	ErrDecodeFailure      = errors.New("payload decode failure")
)

// Codec turns envelope payloads into typed values and back. Decode selects the
// target type by payload type name
type Codec interface {
	Decode(data []byte, typeName string) (any, error)
	Encode(v any) ([]byte, error)
}

// payloadTypes maps each payload type name to a constructor for its value
var payloadTypes = map[string]func() any{
	TypeVersion:   func() any { return &Version{} },
	TypeInventory: func() any { return &Inventory{} },
	TypeGetBlocks: func() any { return &GetBlocks{} },
	TypeHeaders:   func() any { return &Headers{} },
	TypeBlock:     func() any { return &Block{} },
}

// CborCodec is the default Codec, encoding payloads as CBOR arrays
type CborCodec struct{}

// NewCodec returns the default payload codec
func NewCodec() *CborCodec {
	return &CborCodec{}
}

func (c *CborCodec) Decode(data []byte, typeName string) (any, error) {
	newFunc, ok := payloadTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayloadType, typeName)
	}
	ret := newFunc()
	if err := cbor.DecodeExact(data, ret); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, typeName, err)
	}
	if err := validate(ret); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, typeName, err)
	}
	return ret, nil
}

func (c *CborCodec) Encode(v any) ([]byte, error) {
	return cbor.Encode(v)
}

func validate(v any) error {
	switch p := v.(type) {
	case *Inventory:
		if len(p.Hashes) > MaxInventoryHashes {
			return fmt.Errorf("%d hashes exceeds max %d", len(p.Hashes), MaxInventoryHashes)
		}
	case *Headers:
		if len(p.Headers) > MaxHeadersCount {
			return fmt.Errorf("%d headers exceeds max %d", len(p.Headers), MaxHeadersCount)
		}
		for idx, hdr := range p.Headers {
			if hdr == nil {
				return fmt.Errorf("header %d is empty", idx)
			}
		}
	}
	return nil
}

// DecodeAs decodes data with codec and asserts the result to *T
func DecodeAs[T any](codec Codec, data []byte, typeName string) (*T, error) {
	v, err := codec.Decode(data, typeName)
	if err != nil {
		return nil, err
	}
	ret, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %s: decoded %s, wanted %s",
			ErrDecodeFailure,
			typeName,
			reflect.TypeOf(v),
			reflect.TypeFor[*T](),
		)
	}
	return ret, nil
}
