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
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/goneo/wire"
)

// Conn mocks the transport of a peer connection. Data queued with Feed is
// returned from Read, and everything written is decoded into envelopes that
// tests can inspect with Sent
type Conn struct {
	mutex      sync.Mutex
	decoder    *wire.Decoder
	sent       []*wire.Envelope
	writeErr   error
	readChan   chan []byte
	readBuf    []byte
	closeChan  chan struct{}
	hangupChan chan struct{}
	onceClose  sync.Once
	onceHangup sync.Once
	remoteAddr net.Addr
	localAddr  net.Addr
}

// NewConn returns a new Conn that decodes written data with the given network magic
func NewConn(networkMagic uint32) *Conn {
	return &Conn{
		decoder:    wire.NewDecoder(networkMagic),
		readChan:   make(chan []byte, 16),
		closeChan:  make(chan struct{}),
		hangupChan: make(chan struct{}),
		remoteAddr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 20333},
		localAddr:  &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40333},
	}
}

// Feed queues data to be returned by Read
func (c *Conn) Feed(data []byte) {
	tmp := make([]byte, len(data))
	copy(tmp, data)
	c.readChan <- tmp
}

// Hangup simulates the remote end closing the connection. Pending and future
// reads return io.EOF
func (c *Conn) Hangup() {
	c.onceHangup.Do(func() {
		close(c.hangupChan)
	})
}

// SetWriteError makes future writes fail with the given error
func (c *Conn) SetWriteError(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.writeErr = err
}

// Sent returns the envelopes written so far
func (c *Conn) Sent() []*wire.Envelope {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ret := make([]*wire.Envelope, len(c.sent))
	copy(ret, c.sent)
	return ret
}

// SentCommands returns the commands of the envelopes written so far
func (c *Conn) SentCommands() []string {
	var ret []string
	for _, env := range c.Sent() {
		ret = append(ret, env.Command)
	}
	return ret
}

// Reset forgets the envelopes written so far
func (c *Conn) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.sent = nil
}

// IsClosed returns whether Close has been called
func (c *Conn) IsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

// Read returns fed data. It blocks until data is fed or the connection is
// closed or hung up. This is needed to satisfy the net.Conn interface
func (c *Conn) Read(b []byte) (int, error) {
	if len(c.readBuf) == 0 {
		select {
		case <-c.closeChan:
			return 0, net.ErrClosed
		case <-c.hangupChan:
			return 0, io.EOF
		case data := <-c.readChan:
			c.readBuf = data
		}
	}
	n := copy(b, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write records the written envelopes. This is needed to satisfy the net.Conn interface
func (c *Conn) Write(b []byte) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.IsClosed() {
		return 0, net.ErrClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	_, _ = c.decoder.Write(b)
	for {
		env, err := c.decoder.Next()
		if err != nil {
			if errors.Is(err, wire.ErrIncomplete) {
				break
			}
			return 0, err
		}
		c.sent = append(c.sent, env)
	}
	return len(b), nil
}

// Close closes the connection. This is needed to satisfy the net.Conn interface
func (c *Conn) Close() error {
	c.onceClose.Do(func() {
		close(c.closeChan)
	})
	return nil
}

// LocalAddr is needed to satisfy the net.Conn interface
func (c *Conn) LocalAddr() net.Addr {
	return c.localAddr
}

// RemoteAddr is needed to satisfy the net.Conn interface
func (c *Conn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// SetDeadline is needed to satisfy the net.Conn interface
func (c *Conn) SetDeadline(t time.Time) error {
	return nil
}

// SetReadDeadline is needed to satisfy the net.Conn interface
func (c *Conn) SetReadDeadline(t time.Time) error {
	return nil
}

// SetWriteDeadline is needed to satisfy the net.Conn interface
func (c *Conn) SetWriteDeadline(t time.Time) error {
	return nil
}
