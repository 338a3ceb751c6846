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
	"github.com/blinklabs-io/goneo/cbor"
)

// Version is announced by each side at the start of the handshake
type Version struct {
	cbor.StructAsArray
	Version     uint32
	Services    uint64
	Timestamp   uint32
	Port        uint16
	Nonce       uint32
	UserAgent   string
	StartHeight uint32
	Relay       bool
}

// Inventory announces (inv) or requests (getdata) data by hash
type Inventory struct {
	cbor.StructAsArray
	Type   InventoryType
	Hashes []Hash
}

// NewInventory returns an inventory of the given type
func NewInventory(invType InventoryType, hashes []Hash) *Inventory {
	return &Inventory{
		Type:   invType,
		Hashes: hashes,
	}
}

// GetBlocks is the request body of both getheaders and getblocks
type GetBlocks struct {
	cbor.StructAsArray
	HashStart []Hash
	HashStop  Hash
}

// NewGetBlocks returns a request starting after hashStart with no stop hash
func NewGetBlocks(hashStart Hash) *GetBlocks {
	return &GetBlocks{
		HashStart: []Hash{hashStart},
	}
}
