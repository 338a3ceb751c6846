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

package neo_test

import (
	"sync"
	"testing"
	"time"

	neo "github.com/blinklabs-io/goneo"
	"github.com/blinklabs-io/goneo/internal/test"
	"github.com/blinklabs-io/goneo/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRegistryTagString(t *testing.T) {
	testDefs := map[neo.RegistryTag]string{
		neo.RegistryTagHostSeed:      "HostSeed",
		neo.RegistryTagHostManual:    "HostManual",
		neo.RegistryTagRoleInitiator: "RoleInitiator",
		neo.RegistryTagRoleResponder: "RoleResponder",
		neo.RegistryTagNone:          "Unknown",
		neo.RegistryTag(9999):        "Unknown",
	}
	for k, v := range testDefs {
		assert.Equal(t, v, k.String(), "tag %d", k)
	}
}

func TestRegistryClaimBlock(t *testing.T) {
	registry := neo.NewRegistry(neo.RegistryConfig{Logger: testLogger()})
	hash := payload.Hash{0x01}
	assert.True(t, registry.ClaimBlock(hash, 1))
	// Neither the same peer nor another one may request it again
	assert.False(t, registry.ClaimBlock(hash, 1))
	assert.False(t, registry.ClaimBlock(hash, 2))
	assert.True(t, registry.IsInFlight(hash))
	assert.Equal(t, 1, registry.InFlightCount())
	assert.True(t, registry.ReleaseBlock(hash))
	assert.False(t, registry.ReleaseBlock(hash))
	assert.False(t, registry.IsInFlight(hash))
	assert.True(t, registry.ClaimBlock(hash, 2))
}

func TestRegistryClaimBlockConcurrent(t *testing.T) {
	registry := neo.NewRegistry(neo.RegistryConfig{Logger: testLogger()})
	hash := payload.Hash{0x02}
	var wg sync.WaitGroup
	var mutex sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(peerId neo.PeerId) {
			defer wg.Done()
			if registry.ClaimBlock(hash, peerId) {
				mutex.Lock()
				winners++
				mutex.Unlock()
			}
		}(neo.PeerId(i))
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestRegistryInFlightTimeout(t *testing.T) {
	registry := neo.NewRegistry(
		neo.RegistryConfig{
			Logger:          testLogger(),
			InFlightTimeout: 20 * time.Millisecond,
		},
	)
	hashA := payload.Hash{0x0a}
	hashB := payload.Hash{0x0b}
	require.True(t, registry.ClaimBlock(hashA, 1))
	require.True(t, registry.ClaimBlock(hashB, 1))
	assert.False(t, registry.ClaimBlock(hashA, 2))
	time.Sleep(40 * time.Millisecond)
	// An abandoned request can be taken over
	assert.True(t, registry.ClaimBlock(hashA, 2))
	assert.Equal(t, 1, registry.ReleaseExpired())
	assert.False(t, registry.IsInFlight(hashB))
	assert.True(t, registry.IsInFlight(hashA))
}

func TestRegistryReleasePeer(t *testing.T) {
	registry := neo.NewRegistry(neo.RegistryConfig{Logger: testLogger()})
	for i := byte(0); i < 5; i++ {
		require.True(t, registry.ClaimBlock(payload.Hash{i}, neo.PeerId(i%2)))
	}
	assert.Equal(t, 3, registry.ReleasePeer(0))
	assert.Equal(t, 2, registry.InFlightCount())
	assert.Equal(t, 0, registry.ReleasePeer(0))
	assert.Equal(t, 2, registry.ReleasePeer(1))
	assert.Zero(t, registry.InFlightCount())
}

func TestRegistryConnections(t *testing.T) {
	defer goleak.VerifyNone(t)
	chain := test.NewBlockchain()
	registry := neo.NewRegistry(neo.RegistryConfig{Logger: testLogger()})
	client, _ := newTestConnection(t, chain, registry, neo.WithServer(false))
	defer client.Close()
	server, _ := newTestConnection(t, chain, registry)
	defer server.Close()
	assert.Equal(t, 2, registry.Len())
	assert.Len(t, registry.Connections(), 2)
	initiators := registry.GetConnectionsByTags(neo.RegistryTagRoleInitiator)
	require.Len(t, initiators, 1)
	assert.Same(t, client, initiators[0].Conn)
	responders := registry.GetConnectionsByTags(neo.RegistryTagRoleResponder)
	require.Len(t, responders, 1)
	assert.Same(t, server, responders[0].Conn)
	assert.Len(t, registry.GetConnectionsByTags(), 2)
	assert.Same(t, server, registry.GetConnectionById(server.PeerId()).Conn)
	assert.Nil(t, registry.GetConnection(neo.PeerId(remoteNonce)))
	// Adding the same connection twice is refused
	assert.ErrorIs(t, registry.AddConnection(server), neo.ErrDuplicatePeer)

	// Claims follow the connection to its announced peer ID
	oldId := server.PeerId()
	require.True(t, registry.ClaimBlock(payload.Hash{0x33}, oldId))
	require.NoError(t, registry.Rekey(server, neo.PeerId(remoteNonce)))
	assert.Equal(t, neo.PeerId(remoteNonce), server.PeerId())
	assert.Nil(t, registry.GetConnection(oldId))
	assert.Same(t, server, registry.GetConnection(neo.PeerId(remoteNonce)))
	assert.Equal(t, 0, registry.ReleasePeer(oldId))
	assert.Equal(t, 1, registry.ReleasePeer(neo.PeerId(remoteNonce)))
	assert.ErrorIs(t, registry.Rekey(client, neo.PeerId(remoteNonce)), neo.ErrDuplicatePeer)

	registry.RemoveConnection(client.PeerId())
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryHosts(t *testing.T) {
	registry := neo.NewRegistry(neo.RegistryConfig{})
	registry.AddHost("10.0.0.1", 20333, neo.RegistryTagHostManual)
	cfg := &neo.ProtocolConfig{
		ProtocolConfiguration: neo.ProtocolConfiguration{
			Magic:    testMagic,
			SeedList: []string{"seed1.neo.org:10333", "[::1]:20333"},
		},
	}
	require.NoError(t, registry.AddHostsFromConfig(cfg))
	hosts := registry.Hosts()
	require.Len(t, hosts, 3)
	assert.Equal(t, "10.0.0.1", hosts[0].Address)
	assert.True(t, hosts[0].Tags[neo.RegistryTagHostManual])
	assert.Equal(t, "seed1.neo.org", hosts[1].Address)
	assert.Equal(t, uint(10333), hosts[1].Port)
	assert.True(t, hosts[1].Tags[neo.RegistryTagHostSeed])
	assert.Equal(t, "::1", hosts[2].Address)

	cfg.ProtocolConfiguration.SeedList = []string{"no-port"}
	assert.ErrorIs(t, registry.AddHostsFromConfig(cfg), neo.ErrInvalidProtocolConfig)
	cfg.ProtocolConfiguration.SeedList = []string{"host:99999"}
	assert.ErrorIs(t, registry.AddHostsFromConfig(cfg), neo.ErrInvalidProtocolConfig)
	assert.Len(t, registry.Hosts(), 3)
}
