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
	"os"
	"path/filepath"
	"strings"
	"testing"

	neo "github.com/blinklabs-io/goneo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProtocolConfig = `
{
  "ProtocolConfiguration": {
    "Magic": 1953787457,
    "AddressVersion": 23,
    "StandbyValidators": [
      "0327da12b5c40200e9f65569476bbff2218da4f32548ff43b6387ec1416a231ee8"
    ],
    "SeedList": [
      "seed1.neo.org:20333",
      "seed2.neo.org:20333"
    ],
    "SystemFee": {
      "EnrollmentTransaction": 10,
      "IssueTransaction": 5,
      "PublishTransaction": 5,
      "RegisterTransaction": 100
    }
  }
}
`

func TestProtocolConfigFromReader(t *testing.T) {
	cfg, err := neo.NewProtocolConfigFromReader(strings.NewReader(testProtocolConfig))
	require.NoError(t, err)
	assert.Equal(t, uint32(1953787457), cfg.ProtocolConfiguration.Magic)
	assert.Equal(t, byte(0x17), cfg.ProtocolConfiguration.AddressVersion)
	assert.Len(t, cfg.ProtocolConfiguration.StandbyValidators, 1)
	assert.Equal(t, uint64(100), cfg.ProtocolConfiguration.SystemFee["RegisterTransaction"])
	network := cfg.Network()
	assert.Equal(t, "testnet", network.Name)
	assert.Equal(t, neo.NetworkTestnet.NetworkMagic, network.NetworkMagic)
	assert.Equal(t, []string{"seed1.neo.org:20333", "seed2.neo.org:20333"}, network.SeedList)
}

func TestProtocolConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocol.json")
	require.NoError(t, os.WriteFile(path, []byte(testProtocolConfig), 0o600))
	cfg, err := neo.NewProtocolConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1953787457), cfg.ProtocolConfiguration.Magic)
	_, err = neo.NewProtocolConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestProtocolConfigInvalid(t *testing.T) {
	_, err := neo.NewProtocolConfigFromReader(strings.NewReader(`{"ProtocolConfiguration": {}}`))
	assert.ErrorIs(t, err, neo.ErrInvalidProtocolConfig)
	_, err = neo.NewProtocolConfigFromReader(strings.NewReader(`{`))
	assert.Error(t, err)
	cfg, err := neo.NewProtocolConfigFromReader(
		strings.NewReader(`{"ProtocolConfiguration": {"Magic": 12345}}`),
	)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Network().Name)
}

func TestNetworkLookup(t *testing.T) {
	testDefs := []struct {
		name  string
		magic uint32
	}{
		{"mainnet", 7630401},
		{"testnet", 1953787457},
		{"privnet", 56753},
	}
	for _, testDef := range testDefs {
		byName := neo.NetworkByName(testDef.name)
		assert.Equal(t, testDef.magic, byName.NetworkMagic)
		assert.Equal(t, testDef.name, byName.String())
		assert.Equal(t, testDef.name, neo.NetworkByMagic(testDef.magic).Name)
		assert.Equal(t, byte(0x17), byName.AddressVersion)
		assert.NotEmpty(t, byName.SeedList)
	}
	assert.Equal(t, neo.NetworkInvalid, neo.NetworkByName("cardano"))
	assert.Equal(t, neo.NetworkInvalid, neo.NetworkByMagic(1))
}
