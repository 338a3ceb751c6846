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
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Header is a block header without its witness
type Header struct {
	cbor.StructAsArray
	Version       uint32
	PrevHash      Hash
	MerkleRoot    Hash
	Timestamp     uint32
	Index         uint32
	ConsensusData uint64
	NextConsensus Uint160
}

// Hash returns the double SHA-256 of the encoded header. A header that cannot
// be encoded hashes to the zero hash
func (h *Header) Hash() Hash {
	data, err := cbor.Encode(h)
	if err != nil {
		return Hash{}
	}
	return chainhash.DoubleHashH(data)
}

// NextConsensusAddress renders the next consensus script hash as a base58check
// address with the given address version byte
func (h *Header) NextConsensusAddress(addressVersion byte) string {
	return base58.CheckEncode(h.NextConsensus[:], addressVersion)
}

// Headers is the response to getheaders
type Headers struct {
	cbor.StructAsArray
	Headers []*Header
}

// Block is a header plus its transactions. Transactions are left encoded
type Block struct {
	cbor.StructAsArray
	Header       Header
	Transactions []cbor.RawMessage
}

// Hash returns the block hash, which is the hash of its header
func (b *Block) Hash() Hash {
	return b.Header.Hash()
}

// Index returns the block height
func (b *Block) Index() uint32 {
	return b.Header.Index
}
