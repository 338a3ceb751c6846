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

// Package neo implements the peer-to-peer wire protocol of a NEO node.
//
// A Connection wraps a net.Conn, frames the inbound byte stream into
// envelopes, drives the version/verack handshake and then keeps the local
// chain view converging with the peer by requesting headers and blocks.
//
// Connections share a Registry, which tracks connected peers and the block
// hashes that have been requested from them. The chain itself lives behind
// the Blockchain interface and is not part of this package.
package neo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/goneo/payload"
	"github.com/blinklabs-io/goneo/protocol"
	"github.com/blinklabs-io/goneo/wire"
	"github.com/btcsuite/go-socks/socks"
	"github.com/davecgh/go-spew/spew"
	"github.com/jinzhu/copier"
)

const readBufferSize = 64 * 1024

var (
	ErrConnectionClosed      = errors.New("connection closed")
	ErrNotConnected          = errors.New("no connection established")
	ErrInvalidNetworkMagic   = errors.New("invalid network magic")
	ErrMissingBlockchain     = errors.New("no blockchain provided")
	ErrConnectionEstablished = errors.New("a connection was already established")
)

// The Connection type is a wrapper around a net.Conn object that handles communication using the NEO peer protocol over that connection
type Connection struct {
	conn                     net.Conn
	networkMagic             uint32
	addressVersion           byte
	server                   bool
	logger                   *slog.Logger
	registry                 *Registry
	blockchain               Blockchain
	codec                    payload.Codec
	nonce                    uint32
	nonceSet                 bool
	userAgent                string
	port                     uint16
	relay                    bool
	proxy                    *socks.Proxy
	blockReceivedFunc        BlockReceivedFunc
	consensusInventoryFunc   InventoryFunc
	transactionInventoryFunc InventoryFunc
	decoder                  *wire.Decoder
	stats                    *ConnectionStats
	errorChan                chan error
	doneChan                 chan any
	waitGroup                sync.WaitGroup
	onceClose                sync.Once
	// dataMutex serializes processing of inbound data
	dataMutex sync.Mutex
	sendMutex sync.Mutex
	// mutex guards the fields below
	mutex         sync.RWMutex
	state         protocol.State
	peerId        PeerId
	endpoint      string
	remoteVersion *payload.Version
	started       bool
	versionSent   bool
	verackSent    bool
}

// NewConnection returns a new Connection object with the specified options. If a connection is provided, the
// connection will be started. An error will be returned if the options are invalid or starting fails
func NewConnection(options ...ConnectionOptionFunc) (*Connection, error) {
	c := &Connection{
		logger:         slog.Default(),
		codec:          payload.NewCodec(),
		userAgent:      DefaultUserAgent,
		port:           DefaultPort,
		relay:          true,
		addressVersion: DefaultAddressVersion,
		stats:          newConnectionStats(),
		errorChan:      make(chan error, 1),
		doneChan:       make(chan any),
		state:          protocol.StateHello,
		peerId:         PeerId(rand.Uint32()),
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.networkMagic == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNetworkMagic, c.networkMagic)
	}
	if c.blockchain == nil {
		return nil, ErrMissingBlockchain
	}
	if !c.nonceSet {
		c.nonce = rand.Uint32()
	}
	if c.registry == nil {
		c.registry = NewRegistry(RegistryConfig{Logger: c.logger})
	}
	c.logger = c.logger.With("component", "connection")
	c.decoder = wire.NewDecoder(c.networkMagic)
	if c.conn != nil {
		if err := c.Start(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Start moves the connection out of the initial state, registers it and starts
// reading from the underlying net.Conn. A client connection sends its version
// immediately
func (c *Connection) Start() error {
	if c.isClosed() {
		// Shutdown may have happened before Dial provided the net.Conn
		if c.conn != nil {
			_ = c.conn.Close()
		}
		return ErrConnectionClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}
	c.mutex.Lock()
	next, err := protocol.Connect(c.state)
	if err != nil {
		c.mutex.Unlock()
		return err
	}
	c.state = next
	if addr := c.conn.RemoteAddr(); addr != nil {
		c.endpoint = addr.String()
	}
	endpoint := c.endpoint
	c.mutex.Unlock()
	role := RegistryTagRoleInitiator
	if c.server {
		role = RegistryTagRoleResponder
	}
	if err := c.registry.AddConnection(c, role); err != nil {
		c.shutdown(err)
		return err
	}
	// A shutdown racing with registration may have missed the registry entry
	c.mutex.Lock()
	if c.isClosed() {
		c.mutex.Unlock()
		_ = c.conn.Close()
		c.registry.connectionClosed(c, ErrConnectionClosed)
		return ErrConnectionClosed
	}
	c.started = true
	c.mutex.Unlock()
	c.stats.recordConnected()
	c.logger.Info(
		"connection started",
		"peer",
		c.PeerId(),
		"endpoint",
		endpoint,
		"server",
		c.server,
	)
	if !c.server {
		if err := c.sendVersion(); err != nil {
			c.shutdown(err)
			return err
		}
	}
	c.waitGroup.Add(1)
	go c.readLoop()
	return nil
}

// Dial will establish a connection using the specified protocol and address. These parameters are
// passed to [net.Dial], or to the configured SOCKS proxy. The connection is started once established
func (c *Connection) Dial(proto string, address string) error {
	if c.isClosed() {
		return ErrConnectionClosed
	}
	if c.conn != nil {
		return ErrConnectionEstablished
	}
	var conn net.Conn
	var err error
	if c.proxy != nil {
		conn, err = c.proxy.Dial(proto, address)
	} else {
		conn, err = net.Dial(proto, address)
	}
	if err != nil {
		return err
	}
	c.conn = conn
	return c.Start()
}

// Close will shutdown the connection and wait for the read loop to exit. It must
// not be called from a callback running on the connection's read loop
func (c *Connection) Close() error {
	c.shutdown(nil)
	c.waitGroup.Wait()
	return nil
}

// shutdown closes the connection without waiting on the read loop, so that it
// can be called from the read loop itself
func (c *Connection) shutdown(err error) {
	c.onceClose.Do(func() {
		// Close doneChan to signify that we're shutting down
		close(c.doneChan)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mutex.RLock()
		started := c.started
		c.mutex.RUnlock()
		if started {
			c.registry.connectionClosed(c, err)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Info("peer disconnected", "peer", c.PeerId())
			} else {
				c.logger.Warn(
					"closing connection",
					"peer",
					c.PeerId(),
					"error",
					err,
				)
			}
			c.errorChan <- err
		}
		close(c.errorChan)
	})
}

// ErrorChan returns the channel for asynchronous errors. It receives at most one
// error, the one that terminated the connection, and is closed on shutdown
func (c *Connection) ErrorChan() <-chan error {
	return c.errorChan
}

// DoneChan returns a channel that is closed when the connection is shut down
func (c *Connection) DoneChan() <-chan any {
	return c.doneChan
}

// PeerId returns the current peer ID
func (c *Connection) PeerId() PeerId {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.peerId
}

func (c *Connection) setPeerId(peerId PeerId) {
	c.mutex.Lock()
	c.peerId = peerId
	c.mutex.Unlock()
}

// State returns the current connection state
func (c *Connection) State() protocol.State {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state
}

func (c *Connection) setState(state protocol.State) {
	c.mutex.Lock()
	c.state = state
	c.mutex.Unlock()
}

// Endpoint returns the remote address captured when the connection started
func (c *Connection) Endpoint() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.endpoint
}

// RemoteVersion returns a copy of the version announced by the peer. The second
// return value is false until a version has been received
func (c *Connection) RemoteVersion() (payload.Version, bool) {
	var ret payload.Version
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.remoteVersion == nil {
		return ret, false
	}
	if err := copier.CopyWithOption(&ret, c.remoteVersion, copier.Option{DeepCopy: true}); err != nil {
		ret = *c.remoteVersion
	}
	return ret, true
}

// Stats returns a snapshot of the connection counters
func (c *Connection) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// NetworkMagic returns the network magic used for framing
func (c *Connection) NetworkMagic() uint32 {
	return c.networkMagic
}

// AddressVersion returns the address version byte used when rendering addresses
func (c *Connection) AddressVersion() byte {
	return c.addressVersion
}

func (c *Connection) readLoop() {
	defer c.waitGroup.Done()
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			if dataErr := c.DataReceived(buf[:n]); dataErr != nil {
				return
			}
		}
		if err != nil {
			select {
			case <-c.doneChan:
				return
			default:
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Return a bare io.EOF error if error is EOF/ErrUnexpectedEOF
				c.shutdown(io.EOF)
			} else {
				c.shutdown(fmt.Errorf("read error: %w", err))
			}
			return
		}
	}
}

// DataReceived feeds a chunk of transport data into the connection. Every
// envelope that the chunk completes is dispatched before it returns, and a
// partial envelope is kept until more data arrives. Malformed envelopes are
// dropped. The returned error is non-nil when the connection was shut down,
// either earlier or because of this chunk
func (c *Connection) DataReceived(data []byte) error {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()
	if c.isClosed() {
		return ErrConnectionClosed
	}
	c.stats.recordReceived(len(data))
	_, _ = c.decoder.Write(data)
	for {
		if c.isClosed() {
			return ErrConnectionClosed
		}
		env, err := c.decoder.Next()
		if err != nil {
			if errors.Is(err, wire.ErrIncomplete) {
				if hdr, ok := c.decoder.Pending(); ok {
					c.logger.Debug(
						"receiving message",
						"peer",
						c.PeerId(),
						"command",
						hdr.Command,
						"percent_complete",
						c.decoder.Progress(),
					)
				}
				return nil
			}
			c.stats.recordDropped()
			c.logger.Warn(
				"dropping malformed message",
				"peer",
				c.PeerId(),
				"error",
				err,
			)
			continue
		}
		start := time.Now()
		err = c.dispatch(env)
		c.stats.recordDispatch(time.Since(start))
		if err != nil {
			c.shutdown(err)
			return err
		}
	}
}

func (c *Connection) isClosed() bool {
	select {
	case <-c.doneChan:
		return true
	default:
		return false
	}
}

// send encodes and writes a single message. A nil msg sends an empty payload
func (c *Connection) send(command string, msg any) error {
	var data []byte
	if msg != nil {
		var err error
		data, err = c.codec.Encode(msg)
		if err != nil {
			return fmt.Errorf("encode %s: %w", command, err)
		}
	}
	env, err := wire.NewEnvelope(c.networkMagic, command, data)
	if err != nil {
		return err
	}
	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug(
			"sending message",
			"peer",
			c.PeerId(),
			"command",
			command,
			"size",
			env.Size(),
			"payload",
			spew.Sdump(msg),
		)
	}
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	n, err := c.conn.Write(env.Encode())
	if err != nil {
		return fmt.Errorf("write %s: %w", command, err)
	}
	c.stats.recordSent(n)
	return nil
}
