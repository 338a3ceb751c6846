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

package neo

import (
	"github.com/blinklabs-io/goneo/payload"
)

// Blockchain is the local chain view used to drive synchronization. Storage,
// validation and persistence live behind this interface
type Blockchain interface {
	// CurrentHeaderHash returns the hash of the header chain tip
	CurrentHeaderHash() payload.Hash
	// CurrentBlockHashPlusOne returns the hash of the header following the
	// block chain tip, or the block tip hash when no such header is known
	CurrentBlockHashPlusOne() payload.Hash
	// Height returns the index of the highest fully known block
	Height() uint32
	// HeaderHeight returns the index of the highest known header
	HeaderHeight() uint32
	// HeaderHashAt returns the hash of the header at the given index
	HeaderHashAt(index uint32) (payload.Hash, bool)
	// AddHeaders appends headers to the header chain
	AddHeaders(headers []*payload.Header) error
}

// CallbackContext provides context about the connection that a callback
// was invoked for
type CallbackContext struct {
	PeerId     PeerId
	Connection *Connection
}

// BlockReceivedFunc is called with each block received from a peer
type BlockReceivedFunc func(CallbackContext, *payload.Block) error

// InventoryFunc is called with transaction and consensus inventory
// announcements
type InventoryFunc func(CallbackContext, *payload.Inventory) error
