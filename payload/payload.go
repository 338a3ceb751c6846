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

// Package payload defines the typed message payloads exchanged between NEO
// peers and the Codec used to turn raw envelope payloads into them.
package payload

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a 32-byte NEO UInt256
type Hash = chainhash.Hash

// Uint160 is a 20-byte NEO script hash
type Uint160 [20]byte

// InventoryType identifies the kind of data an inventory announces
type InventoryType uint8

const (
	InventoryTypeTransaction InventoryType = 0x01
	InventoryTypeBlock       InventoryType = 0x02
	InventoryTypeConsensus   InventoryType = 0xe0
)

func (t InventoryType) String() string {
	switch t {
	case InventoryTypeTransaction:
		return "Transaction"
	case InventoryTypeBlock:
		return "Block"
	case InventoryTypeConsensus:
		return "Consensus"
	}
	return fmt.Sprintf("Unknown(%#02x)", uint8(t))
}

// Payload type names, used to select a decoder for an envelope payload
const (
	TypeVersion   = "VersionPayload"
	TypeInventory = "InvPayload"
	TypeGetBlocks = "GetBlocksPayload"
	TypeHeaders   = "HeadersPayload"
	TypeBlock     = "Block"
)

const (
	// MaxInventoryHashes is the largest number of hashes in one inv or getdata
	MaxInventoryHashes = 500
	// MaxHeadersCount is the largest number of headers in one headers message
	MaxHeadersCount = 2000
)
