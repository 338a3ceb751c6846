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

// Package cbor provides the CBOR helpers used by the default payload codec.
//
// It wraps github.com/fxamacker/cbor/v2 with a shared, lazily built encode and
// decode mode so every caller encodes deterministically and rejects unknown
// fields on decode.
//
// Embed StructAsArray in a struct to encode its fields as a CBOR array rather
// than a map, which keeps payloads compact on the wire:
//
//	type GetBlocks struct {
//	    cbor.StructAsArray
//	    HashStart []Hash
//	    HashStop  Hash
//	}
package cbor
