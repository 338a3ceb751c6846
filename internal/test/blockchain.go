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
	"fmt"
	"sync"

	"github.com/blinklabs-io/goneo/payload"
)

// Blockchain is an in-memory chain view used by tests. It keeps header hashes
// by index and a block height that tests move explicitly
type Blockchain struct {
	mutex        sync.Mutex
	headerHashes []payload.Hash
	height       uint32
	hashFunc     func(*payload.Header) payload.Hash
	// AddHeadersErr optionally makes AddHeaders fail
	AddHeadersErr error
	// AddHeadersCalls counts the headers passed to AddHeaders
	AddHeadersCalls int
}

// NewBlockchain returns a Blockchain holding only the genesis header
func NewBlockchain() *Blockchain {
	return NewBlockchainWithHash(nil)
}

// NewBlockchainWithHash is like NewBlockchain, but identifies headers by
// hashFunc instead of Header.Hash
func NewBlockchainWithHash(hashFunc func(*payload.Header) payload.Hash) *Blockchain {
	if hashFunc == nil {
		hashFunc = func(hdr *payload.Header) payload.Hash {
			return hdr.Hash()
		}
	}
	genesis := &payload.Header{
		Version:   0,
		Timestamp: 1468595301,
		Index:     0,
	}
	return &Blockchain{
		headerHashes: []payload.Hash{hashFunc(genesis)},
		hashFunc:     hashFunc,
	}
}

// MakeHeaders returns count headers chained onto the current header tip,
// without adding them
func (b *Blockchain) MakeHeaders(count int) []*payload.Header {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	ret := make([]*payload.Header, 0, count)
	prevHash := b.headerHashes[len(b.headerHashes)-1]
	index := uint32(len(b.headerHashes))
	for i := 0; i < count; i++ {
		hdr := &payload.Header{
			Version:       0,
			PrevHash:      prevHash,
			Timestamp:     1468595301 + index*15,
			Index:         index,
			ConsensusData: uint64(index) * 7919,
		}
		ret = append(ret, hdr)
		prevHash = b.hashFunc(hdr)
		index++
	}
	return ret
}

// ExtendHeaders adds count headers to the header chain
func (b *Blockchain) ExtendHeaders(count int) {
	if err := b.AddHeaders(b.MakeHeaders(count)); err != nil {
		panic(fmt.Sprintf("unexpected error extending headers: %s", err))
	}
}

// SetHeight sets the block height
func (b *Blockchain) SetHeight(height uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.height = height
}

func (b *Blockchain) CurrentHeaderHash() payload.Hash {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.headerHashes[len(b.headerHashes)-1]
}

func (b *Blockchain) CurrentBlockHashPlusOne() payload.Hash {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(b.height)+1 < len(b.headerHashes) {
		return b.headerHashes[b.height+1]
	}
	return b.headerHashes[b.height]
}

func (b *Blockchain) Height() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.height
}

func (b *Blockchain) HeaderHeight() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return uint32(len(b.headerHashes) - 1)
}

func (b *Blockchain) HeaderHashAt(index uint32) (payload.Hash, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if int(index) >= len(b.headerHashes) {
		return payload.Hash{}, false
	}
	return b.headerHashes[index], true
}

// AddHeaders appends the headers that extend the current tip and ignores
// headers that are already known
func (b *Blockchain) AddHeaders(headers []*payload.Header) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.AddHeadersCalls += len(headers)
	if b.AddHeadersErr != nil {
		return b.AddHeadersErr
	}
	for _, hdr := range headers {
		switch {
		case int(hdr.Index) < len(b.headerHashes):
			continue
		case int(hdr.Index) == len(b.headerHashes):
			if hdr.PrevHash != b.headerHashes[len(b.headerHashes)-1] {
				return fmt.Errorf("header %d does not extend the chain", hdr.Index)
			}
			b.headerHashes = append(b.headerHashes, b.hashFunc(hdr))
		default:
			return fmt.Errorf(
				"header %d is ahead of header height %d",
				hdr.Index,
				len(b.headerHashes)-1,
			)
		}
	}
	return nil
}
