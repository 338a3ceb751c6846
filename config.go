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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrInvalidProtocolConfig = errors.New("invalid protocol config")

// ProtocolConfig represents a NEO node protocol.json file
type ProtocolConfig struct {
	ProtocolConfiguration ProtocolConfiguration `json:"ProtocolConfiguration"`
}

type ProtocolConfiguration struct {
	Magic             uint32            `json:"Magic"`
	AddressVersion    byte              `json:"AddressVersion"`
	StandbyValidators []string          `json:"StandbyValidators"`
	SeedList          []string          `json:"SeedList"`
	SystemFee         map[string]uint64 `json:"SystemFee"`
}

func NewProtocolConfigFromFile(path string) (*ProtocolConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewProtocolConfigFromReader(dataFile)
}

func NewProtocolConfigFromReader(r io.Reader) (*ProtocolConfig, error) {
	p := &ProtocolConfig{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if p.ProtocolConfiguration.Magic == 0 {
		return nil, fmt.Errorf("%w: missing network magic", ErrInvalidProtocolConfig)
	}
	return p, nil
}

// Network returns a Network built from the protocol config. A predefined
// network with the same magic provides the name
func (p *ProtocolConfig) Network() Network {
	cfg := p.ProtocolConfiguration
	ret := Network{
		Name:           NetworkByMagic(cfg.Magic).Name,
		NetworkMagic:   cfg.Magic,
		AddressVersion: cfg.AddressVersion,
		SeedList:       append([]string(nil), cfg.SeedList...),
	}
	if ret.Name == NetworkInvalid.Name {
		ret.Name = "custom"
	}
	return ret
}
