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

import "time"

const (
	// ProtocolVersion is the version announced in the version handshake
	ProtocolVersion uint32 = 0
	// ServiceNodeNetwork marks a node that serves the full chain
	ServiceNodeNetwork uint64 = 1

	DefaultUserAgent = "/NEO:2.0.1/"
	DefaultPort      = 20333
	// DefaultAddressVersion is the address version byte used by the public networks
	DefaultAddressVersion byte = 0x17

	// MaxBlockRequestBatch caps the number of hashes in one block getdata
	MaxBlockRequestBatch = 100
	// DefaultInFlightTimeout is how long a block request is owned by a peer
	// before another peer may claim it
	DefaultInFlightTimeout = 60 * time.Second
)
