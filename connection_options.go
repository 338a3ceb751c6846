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
	"log/slog"
	"net"

	"github.com/blinklabs-io/goneo/payload"
	"github.com/btcsuite/go-socks/socks"
)

// ConnectionOptionFunc is a type that represents functions that modify the Connection config
type ConnectionOptionFunc func(*Connection)

// WithConnection specifies an existing connection to use. If none is provided, the Dial() function can be
// used to create one later
func WithConnection(conn net.Conn) ConnectionOptionFunc {
	return func(c *Connection) {
		c.conn = conn
	}
}

// WithNetwork specifies the network
func WithNetwork(network Network) ConnectionOptionFunc {
	return func(c *Connection) {
		c.networkMagic = network.NetworkMagic
		if network.AddressVersion != 0 {
			c.addressVersion = network.AddressVersion
		}
	}
}

// WithNetworkMagic specifies the network magic value
func WithNetworkMagic(networkMagic uint32) ConnectionOptionFunc {
	return func(c *Connection) {
		c.networkMagic = networkMagic
	}
}

// WithProtocolConfig specifies the network from a protocol config
func WithProtocolConfig(cfg *ProtocolConfig) ConnectionOptionFunc {
	return WithNetwork(cfg.Network())
}

// WithLogger specifies the logger. The default is slog.Default()
func WithLogger(logger *slog.Logger) ConnectionOptionFunc {
	return func(c *Connection) {
		c.logger = logger
	}
}

// WithRegistry specifies the shared peer registry. If none is provided, the connection gets a private one
func WithRegistry(registry *Registry) ConnectionOptionFunc {
	return func(c *Connection) {
		c.registry = registry
	}
}

// WithBlockchain specifies the local chain view used for synchronization
func WithBlockchain(blockchain Blockchain) ConnectionOptionFunc {
	return func(c *Connection) {
		c.blockchain = blockchain
	}
}

// WithCodec specifies the payload codec. The default is the CBOR codec from the payload package
func WithCodec(codec payload.Codec) ConnectionOptionFunc {
	return func(c *Connection) {
		c.codec = codec
	}
}

// WithServer specifies whether to act as a server. A server waits for the remote version before
// sending its own
func WithServer(server bool) ConnectionOptionFunc {
	return func(c *Connection) {
		c.server = server
	}
}

// WithNonce specifies the local node nonce announced in the version message. Every connection of a
// node should use the same nonce so that connections to self can be detected
func WithNonce(nonce uint32) ConnectionOptionFunc {
	return func(c *Connection) {
		c.nonce = nonce
		c.nonceSet = true
	}
}

// WithUserAgent specifies the user agent announced in the version message
func WithUserAgent(userAgent string) ConnectionOptionFunc {
	return func(c *Connection) {
		c.userAgent = userAgent
	}
}

// WithPort specifies the listening port announced in the version message
func WithPort(port uint16) ConnectionOptionFunc {
	return func(c *Connection) {
		c.port = port
	}
}

// WithRelay specifies whether the peer should relay transactions to us
func WithRelay(relay bool) ConnectionOptionFunc {
	return func(c *Connection) {
		c.relay = relay
	}
}

// WithProxy specifies a SOCKS5 proxy to use with Dial()
func WithProxy(address string, username string, password string) ConnectionOptionFunc {
	return func(c *Connection) {
		c.proxy = &socks.Proxy{
			Addr:     address,
			Username: username,
			Password: password,
		}
	}
}

// WithBlockReceivedFunc specifies a callback function for blocks received from the peer
func WithBlockReceivedFunc(blockReceivedFunc BlockReceivedFunc) ConnectionOptionFunc {
	return func(c *Connection) {
		c.blockReceivedFunc = blockReceivedFunc
	}
}

// WithConsensusInventoryFunc specifies a callback function for consensus inventory announcements
func WithConsensusInventoryFunc(inventoryFunc InventoryFunc) ConnectionOptionFunc {
	return func(c *Connection) {
		c.consensusInventoryFunc = inventoryFunc
	}
}

// WithTransactionInventoryFunc specifies a callback function for transaction inventory announcements
func WithTransactionInventoryFunc(inventoryFunc InventoryFunc) ConnectionOptionFunc {
	return func(c *Connection) {
		c.transactionInventoryFunc = inventoryFunc
	}
}
