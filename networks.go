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

// Network definitions
var (
	NetworkMainnet = Network{
		Name:           "mainnet",
		NetworkMagic:   7630401,
		AddressVersion: DefaultAddressVersion,
		SeedList: []string{
			"seed1.neo.org:10333",
			"seed2.neo.org:10333",
			"seed3.neo.org:10333",
			"seed4.neo.org:10333",
			"seed5.neo.org:10333",
		},
	}
	NetworkTestnet = Network{
		Name:           "testnet",
		NetworkMagic:   1953787457,
		AddressVersion: DefaultAddressVersion,
		SeedList: []string{
			"seed1.neo.org:20333",
			"seed2.neo.org:20333",
			"seed3.neo.org:20333",
			"seed4.neo.org:20333",
			"seed5.neo.org:20333",
		},
	}
	NetworkPrivnet = Network{
		Name:           "privnet",
		NetworkMagic:   56753,
		AddressVersion: DefaultAddressVersion,
		SeedList: []string{
			"127.0.0.1:20333",
			"127.0.0.1:20334",
			"127.0.0.1:20335",
			"127.0.0.1:20336",
		},
	}

	NetworkInvalid = Network{
		Name:         "invalid",
		NetworkMagic: 0,
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkTestnet,
	NetworkPrivnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByMagic returns a predefined network by network magic
func NetworkByMagic(networkMagic uint32) Network {
	for _, network := range networks {
		if network.NetworkMagic == networkMagic {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a NEO network
type Network struct {
	Name           string
	NetworkMagic   uint32
	AddressVersion byte
	SeedList       []string
}

func (n Network) String() string {
	return n.Name
}
