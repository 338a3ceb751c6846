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
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/blinklabs-io/goneo/payload"
)

var ErrDuplicatePeer = errors.New("duplicate peer")

// PeerId identifies a peer connection. It starts as a locally generated nonce
// and becomes the remote node's nonce once the handshake announces it
type PeerId uint32

// RegistryConnClosedFunc is a function that takes a peer ID and an optional error
type RegistryConnClosedFunc func(PeerId, error)

// RegistryTag represents the various tags that can be associated with a host or connection
type RegistryTag uint16

const (
	RegistryTagNone RegistryTag = iota

	RegistryTagHostSeed
	RegistryTagHostManual

	RegistryTagRoleInitiator
	RegistryTagRoleResponder
)

func (t RegistryTag) String() string {
	tmp := map[RegistryTag]string{
		RegistryTagHostSeed:      "HostSeed",
		RegistryTagHostManual:    "HostManual",
		RegistryTagRoleInitiator: "RoleInitiator",
		RegistryTagRoleResponder: "RoleResponder",
	}
	ret, ok := tmp[t]
	if !ok {
		return "Unknown"
	}
	return ret
}

// Registry is the process-wide peer table shared by all connections. It also
// tracks which block hashes have been requested, and from which peer, so that
// the same block is not fetched from several peers at once
type Registry struct {
	config      RegistryConfig
	logger      *slog.Logger
	mutex       sync.Mutex
	hosts       []RegistryHost
	connections map[PeerId]*RegistryConnection
	inFlight    map[payload.Hash]inFlightRequest
}

type RegistryConfig struct {
	Logger *slog.Logger
	// InFlightTimeout is how long a block request stays owned by the peer it
	// was sent to. Defaults to DefaultInFlightTimeout
	InFlightTimeout time.Duration
	ConnClosedFunc  RegistryConnClosedFunc
}

type RegistryHost struct {
	Address string
	Port    uint
	Tags    map[RegistryTag]bool
}

type RegistryConnection struct {
	Conn *Connection
	Tags map[RegistryTag]bool
}

type inFlightRequest struct {
	peerId      PeerId
	requestedAt time.Time
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.InFlightTimeout <= 0 {
		cfg.InFlightTimeout = DefaultInFlightTimeout
	}
	return &Registry{
		config:      cfg,
		logger:      cfg.Logger.With("component", "registry"),
		connections: make(map[PeerId]*RegistryConnection),
		inFlight:    make(map[payload.Hash]inFlightRequest),
	}
}

func (r *Registry) AddHost(address string, port uint, tags ...RegistryTag) {
	tmpTags := map[RegistryTag]bool{}
	for _, tag := range tags {
		tmpTags[tag] = true
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.hosts = append(
		r.hosts,
		RegistryHost{
			Address: address,
			Port:    port,
			Tags:    tmpTags,
		},
	)
}

// AddHostsFromConfig adds the seed list of a protocol config as seed hosts
func (r *Registry) AddHostsFromConfig(cfg *ProtocolConfig) error {
	for _, seed := range cfg.ProtocolConfiguration.SeedList {
		host, portStr, err := net.SplitHostPort(seed)
		if err != nil {
			return fmt.Errorf("%w: seed %q: %w", ErrInvalidProtocolConfig, seed, err)
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return fmt.Errorf("%w: seed %q: %w", ErrInvalidProtocolConfig, seed, err)
		}
		r.AddHost(host, uint(port), RegistryTagHostSeed)
	}
	return nil
}

// Hosts returns the known hosts
func (r *Registry) Hosts() []RegistryHost {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ret := make([]RegistryHost, len(r.hosts))
	copy(ret, r.hosts)
	return ret
}

// AddConnection registers a connection under its current peer ID
func (r *Registry) AddConnection(conn *Connection, tags ...RegistryTag) error {
	tmpTags := map[RegistryTag]bool{}
	for _, tag := range tags {
		tmpTags[tag] = true
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	peerId := conn.PeerId()
	if _, ok := r.connections[peerId]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicatePeer, peerId)
	}
	r.connections[peerId] = &RegistryConnection{
		Conn: conn,
		Tags: tmpTags,
	}
	return nil
}

func (r *Registry) RemoveConnection(peerId PeerId) {
	r.mutex.Lock()
	delete(r.connections, peerId)
	r.mutex.Unlock()
}

// Rekey moves a connection from its provisional peer ID to the one announced
// by the remote node. Block requests owned by the old ID move along with it
func (r *Registry) Rekey(conn *Connection, newId PeerId) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	oldId := conn.PeerId()
	if oldId == newId {
		return nil
	}
	if _, ok := r.connections[newId]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicatePeer, newId)
	}
	if entry, ok := r.connections[oldId]; ok && entry.Conn == conn {
		delete(r.connections, oldId)
		r.connections[newId] = entry
	}
	for hash, req := range r.inFlight {
		if req.peerId == oldId {
			req.peerId = newId
			r.inFlight[hash] = req
		}
	}
	conn.setPeerId(newId)
	return nil
}

func (r *Registry) GetConnection(peerId PeerId) *Connection {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	entry, ok := r.connections[peerId]
	if !ok {
		return nil
	}
	return entry.Conn
}

func (r *Registry) GetConnectionById(peerId PeerId) *RegistryConnection {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.connections[peerId]
}

func (r *Registry) GetConnectionsByTags(tags ...RegistryTag) []*RegistryConnection {
	var ret []*RegistryConnection
	r.mutex.Lock()
	for _, conn := range r.connections {
		skipConn := false
		for _, tag := range tags {
			if _, ok := conn.Tags[tag]; !ok {
				skipConn = true
				break
			}
		}
		if !skipConn {
			ret = append(ret, conn)
		}
	}
	r.mutex.Unlock()
	return ret
}

// Connections returns all registered connections
func (r *Registry) Connections() []*Connection {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ret := make([]*Connection, 0, len(r.connections))
	for _, entry := range r.connections {
		ret = append(ret, entry.Conn)
	}
	return ret
}

func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.connections)
}

// connectionClosed removes a closed connection, releases its block requests
// and notifies the configured callback
func (r *Registry) connectionClosed(conn *Connection, err error) {
	r.mutex.Lock()
	peerId := conn.PeerId()
	if entry, ok := r.connections[peerId]; ok && entry.Conn == conn {
		delete(r.connections, peerId)
	}
	released := r.releasePeer(peerId)
	r.mutex.Unlock()
	if released > 0 {
		r.logger.Debug(
			"released block requests of closed connection",
			"peer",
			peerId,
			"count",
			released,
		)
	}
	if r.config.ConnClosedFunc != nil {
		r.config.ConnClosedFunc(peerId, err)
	}
}

// ClaimBlock marks a block hash as requested from the specified peer. It
// returns false when the hash is already in flight. A request older than the
// in-flight timeout is considered abandoned and may be claimed again
func (r *Registry) ClaimBlock(hash payload.Hash, peerId PeerId) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	now := time.Now()
	if req, ok := r.inFlight[hash]; ok {
		if now.Sub(req.requestedAt) < r.config.InFlightTimeout {
			return false
		}
		r.logger.Debug(
			"reclaiming expired block request",
			"hash",
			hash.String(),
			"previous_peer",
			req.peerId,
			"peer",
			peerId,
		)
	}
	r.inFlight[hash] = inFlightRequest{
		peerId:      peerId,
		requestedAt: now,
	}
	return true
}

// ReleaseBlock removes a block hash from the in-flight set
func (r *Registry) ReleaseBlock(hash payload.Hash) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.inFlight[hash]; !ok {
		return false
	}
	delete(r.inFlight, hash)
	return true
}

// ReleasePeer removes every block request owned by the specified peer and
// returns how many were removed
func (r *Registry) ReleasePeer(peerId PeerId) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.releasePeer(peerId)
}

func (r *Registry) releasePeer(peerId PeerId) int {
	count := 0
	for hash, req := range r.inFlight {
		if req.peerId == peerId {
			delete(r.inFlight, hash)
			count++
		}
	}
	return count
}

// ReleaseExpired removes every block request older than the in-flight
// timeout and returns how many were removed
func (r *Registry) ReleaseExpired() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	count := 0
	now := time.Now()
	for hash, req := range r.inFlight {
		if now.Sub(req.requestedAt) >= r.config.InFlightTimeout {
			delete(r.inFlight, hash)
			count++
		}
	}
	return count
}

func (r *Registry) IsInFlight(hash payload.Hash) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, ok := r.inFlight[hash]
	return ok
}

func (r *Registry) InFlightCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.inFlight)
}
