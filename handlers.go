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
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/goneo/payload"
	"github.com/blinklabs-io/goneo/protocol"
	"github.com/blinklabs-io/goneo/wire"
)

type commandHandlerFunc func(*Connection, *wire.Envelope) error

// commandHandlers maps the commands we act on to their handlers. Other
// commands are accepted and ignored
var commandHandlers = map[string]commandHandlerFunc{
	wire.CmdVersion: (*Connection).handleVersion,
	wire.CmdVerack:  (*Connection).handleVerack,
	wire.CmdGetAddr: (*Connection).handleGetAddr,
	wire.CmdInv:     (*Connection).handleInv,
	wire.CmdBlock:   (*Connection).handleBlock,
	wire.CmdHeaders: (*Connection).handleHeaders,
}

// dispatch runs the handler for a single envelope. Payload decode failures
// drop the message. Any other returned error ends the connection
func (c *Connection) dispatch(env *wire.Envelope) error {
	handler, ok := commandHandlers[env.Command]
	if !ok {
		c.stats.recordUnknown()
		c.logger.Info(
			"command not implemented",
			"peer",
			c.PeerId(),
			"command",
			env.Command,
		)
		return nil
	}
	state := c.State()
	next, err := protocol.PeerStateMap.Next(state, env.Command)
	if err != nil {
		return err
	}
	c.logger.Debug(
		"received message",
		"peer",
		c.PeerId(),
		"command",
		env.Command,
		"size",
		env.Size(),
	)
	if err := handler(c, env); err != nil {
		if errors.Is(err, payload.ErrDecodeFailure) {
			c.stats.recordDropped()
			c.logger.Warn(
				"dropping undecodable message",
				"peer",
				c.PeerId(),
				"command",
				env.Command,
				"error",
				err,
			)
			return nil
		}
		return err
	}
	if next != state {
		c.setState(next)
		c.logger.Debug(
			"state changed",
			"peer",
			c.PeerId(),
			"from",
			state.String(),
			"to",
			next.String(),
		)
	}
	return nil
}

func (c *Connection) callbackContext() CallbackContext {
	return CallbackContext{
		PeerId:     c.PeerId(),
		Connection: c,
	}
}

func (c *Connection) handleVersion(env *wire.Envelope) error {
	ver, err := payload.DecodeAs[payload.Version](c.codec, env.Payload, payload.TypeVersion)
	if err != nil {
		return err
	}
	if ver.Nonce == c.nonce {
		return fmt.Errorf("%w: connected to self", protocol.ErrHandshakeViolation)
	}
	if err := c.registry.Rekey(c, PeerId(ver.Nonce)); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrHandshakeViolation, err)
	}
	c.mutex.Lock()
	c.remoteVersion = ver
	versionSent := c.versionSent
	c.mutex.Unlock()
	c.logger.Info(
		"received version",
		"peer",
		c.PeerId(),
		"user_agent",
		ver.UserAgent,
		"start_height",
		ver.StartHeight,
	)
	if !versionSent {
		return c.sendVersion()
	}
	// We opened the handshake, so our version is out and the peer is waiting
	// for us to acknowledge theirs
	return c.sendVerack()
}

func (c *Connection) handleVerack(env *wire.Envelope) error {
	c.mutex.RLock()
	verackSent := c.verackSent
	c.mutex.RUnlock()
	if !verackSent {
		if err := c.sendVerack(); err != nil {
			return err
		}
	}
	c.logger.Info("handshake complete", "peer", c.PeerId())
	return c.startSync()
}

func (c *Connection) handleGetAddr(env *wire.Envelope) error {
	c.logger.Debug("not handling addresses", "peer", c.PeerId())
	return nil
}

func (c *Connection) handleInv(env *wire.Envelope) error {
	inv, err := payload.DecodeAs[payload.Inventory](c.codec, env.Payload, payload.TypeInventory)
	if err != nil {
		return err
	}
	c.logger.Debug(
		"received inventory",
		"peer",
		c.PeerId(),
		"type",
		inv.Type.String(),
		"count",
		len(inv.Hashes),
	)
	switch inv.Type {
	case payload.InventoryTypeBlock:
		return c.requestBlockData()
	case payload.InventoryTypeConsensus:
		return c.handleInventoryStub(inv, c.consensusInventoryFunc)
	case payload.InventoryTypeTransaction:
		return c.handleInventoryStub(inv, c.transactionInventoryFunc)
	default:
		c.stats.recordDropped()
		c.logger.Warn(
			"unknown inventory type",
			"peer",
			c.PeerId(),
			"type",
			inv.Type.String(),
		)
	}
	return nil
}

func (c *Connection) handleInventoryStub(inv *payload.Inventory, inventoryFunc InventoryFunc) error {
	if inventoryFunc == nil {
		c.logger.Debug(
			"inventory handling not implemented",
			"peer",
			c.PeerId(),
			"type",
			inv.Type.String(),
		)
		return nil
	}
	if err := inventoryFunc(c.callbackContext(), inv); err != nil {
		c.logger.Warn(
			"inventory callback failed",
			"peer",
			c.PeerId(),
			"type",
			inv.Type.String(),
			"error",
			err,
		)
	}
	return nil
}

func (c *Connection) handleBlock(env *wire.Envelope) error {
	block, err := payload.DecodeAs[payload.Block](c.codec, env.Payload, payload.TypeBlock)
	if err != nil {
		return err
	}
	// Requests are claimed by the stored header hash, which need not match a
	// hash computed from this codec's encoding
	hash, ok := c.blockchain.HeaderHashAt(block.Index())
	if !ok {
		hash = block.Hash()
	}
	c.registry.ReleaseBlock(hash)
	c.logger.Debug(
		"received block",
		"peer",
		c.PeerId(),
		"index",
		block.Index(),
		"hash",
		hash.String(),
		"next_consensus",
		block.Header.NextConsensusAddress(c.addressVersion),
	)
	if c.blockReceivedFunc == nil {
		return nil
	}
	if err := c.blockReceivedFunc(c.callbackContext(), block); err != nil {
		c.logger.Warn(
			"block callback failed",
			"peer",
			c.PeerId(),
			"index",
			block.Index(),
			"error",
			err,
		)
	}
	return nil
}

func (c *Connection) handleHeaders(env *wire.Envelope) error {
	headers, err := payload.DecodeAs[payload.Headers](c.codec, env.Payload, payload.TypeHeaders)
	if err != nil {
		return err
	}
	return c.headersReceived(headers.Headers)
}

func (c *Connection) sendVersion() error {
	msg := &payload.Version{
		Version:     ProtocolVersion,
		Services:    ServiceNodeNetwork,
		Timestamp:   uint32(time.Now().Unix()),
		Port:        c.port,
		Nonce:       c.nonce,
		UserAgent:   c.userAgent,
		StartHeight: c.blockchain.Height(),
		Relay:       c.relay,
	}
	c.mutex.Lock()
	c.versionSent = true
	c.mutex.Unlock()
	return c.send(wire.CmdVersion, msg)
}

func (c *Connection) sendVerack() error {
	c.mutex.Lock()
	c.verackSent = true
	c.mutex.Unlock()
	return c.send(wire.CmdVerack, nil)
}
