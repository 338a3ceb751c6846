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
	"github.com/blinklabs-io/goneo/wire"
)

// startSync issues the initial header and block requests once the handshake
// is complete
func (c *Connection) startSync() error {
	if err := c.requestHeaders(); err != nil {
		return err
	}
	return c.requestBlocks()
}

func (c *Connection) requestHeaders() error {
	hashStart := c.blockchain.CurrentHeaderHash()
	c.logger.Debug(
		"asking for more headers",
		"peer",
		c.PeerId(),
		"hash_start",
		hashStart.String(),
	)
	return c.send(wire.CmdGetHeaders, payload.NewGetBlocks(hashStart))
}

func (c *Connection) requestBlocks() error {
	hashStart := c.blockchain.CurrentBlockHashPlusOne()
	c.logger.Debug(
		"asking for more blocks",
		"peer",
		c.PeerId(),
		"hash_start",
		hashStart.String(),
	)
	return c.send(wire.CmdGetBlocks, payload.NewGetBlocks(hashStart))
}

// headersReceived appends a batch of headers and asks for more while we are
// behind the height the peer announced. A batch that does not advance the
// header height ends the loop
func (c *Connection) headersReceived(headers []*payload.Header) error {
	before := c.blockchain.HeaderHeight()
	if len(headers) > 0 {
		if err := c.blockchain.AddHeaders(headers); err != nil {
			c.logger.Warn(
				"failed to add headers",
				"peer",
				c.PeerId(),
				"count",
				len(headers),
				"error",
				err,
			)
			return nil
		}
	}
	after := c.blockchain.HeaderHeight()
	remote, _ := c.RemoteVersion()
	c.logger.Debug(
		"received headers",
		"peer",
		c.PeerId(),
		"count",
		len(headers),
		"header_height",
		after,
		"start_height",
		remote.StartHeight,
	)
	if after <= before {
		return nil
	}
	if after < remote.StartHeight {
		return c.requestHeaders()
	}
	return nil
}

// requestBlockData asks this peer for the next blocks whose headers we already
// have. Each hash is claimed in the registry first, so a block that another
// peer is already serving is skipped
func (c *Connection) requestBlockData() error {
	peerId := c.PeerId()
	height := c.blockchain.Height()
	headerHeight := c.blockchain.HeaderHeight()
	var hashes []payload.Hash
	for index := height + 1; index < headerHeight && len(hashes) < MaxBlockRequestBatch; index++ {
		hash, ok := c.blockchain.HeaderHashAt(index)
		if !ok {
			break
		}
		if !c.registry.ClaimBlock(hash, peerId) {
			continue
		}
		hashes = append(hashes, hash)
	}
	c.logger.Debug(
		"requesting blocks",
		"peer",
		peerId,
		"count",
		len(hashes),
	)
	if len(hashes) == 0 {
		return nil
	}
	return c.send(
		wire.CmdGetData,
		payload.NewInventory(payload.InventoryTypeBlock, hashes),
	)
}
