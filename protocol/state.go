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

// Package protocol defines the states a NEO peer connection moves through and
// the commands each state accepts.
package protocol

import (
	"fmt"

	"github.com/blinklabs-io/goneo/wire"
)

type State struct {
	Id   uint
	Name string
}

func NewState(id uint, name string) State {
	return State{
		Id:   id,
		Name: name,
	}
}

func (s State) String() string {
	return s.Name
}

var (
	// StateHello is the initial state, before the transport is connected
	StateHello = NewState(1, "Hello")
	// StateConnecting waits for the remote version
	StateConnecting = NewState(2, "Connecting")
	// StateVersion has exchanged versions and waits for verack
	StateVersion = NewState(3, "Version")
	// StateEstablished has completed the handshake
	StateEstablished = NewState(4, "Established")
)

type StateTransition struct {
	Command  string
	NewState State
}

type StateMapEntry struct {
	Transitions []StateTransition
}

type StateMap map[State]StateMapEntry

// Copy returns a copy of the state map
func (s StateMap) Copy() StateMap {
	ret := StateMap{}
	for k, v := range s {
		ret[k] = v
	}
	return ret
}

// Next returns the state that follows cur on receipt of command. Commands that
// the current state does not accept are handshake violations
func (s StateMap) Next(cur State, command string) (State, error) {
	entry, ok := s[cur]
	if ok {
		for _, transition := range entry.Transitions {
			if transition.Command == command {
				return transition.NewState, nil
			}
		}
	}
	return cur, fmt.Errorf(
		"%w: command %s not allowed in state %s",
		ErrHandshakeViolation,
		command,
		cur,
	)
}

// Connect returns the state that follows cur when the transport connects
func Connect(cur State) (State, error) {
	if cur != StateHello {
		return cur, fmt.Errorf(
			"%w: connect in state %s",
			ErrHandshakeViolation,
			cur,
		)
	}
	return StateConnecting, nil
}

// PeerStateMap is the handshake and session state machine. Once established, the
// session commands keep the connection in StateEstablished
var PeerStateMap = StateMap{
	StateHello: StateMapEntry{},
	StateConnecting: StateMapEntry{
		Transitions: []StateTransition{
			{
				Command:  wire.CmdVersion,
				NewState: StateVersion,
			},
		},
	},
	StateVersion: StateMapEntry{
		Transitions: []StateTransition{
			{
				Command:  wire.CmdVerack,
				NewState: StateEstablished,
			},
		},
	},
	StateEstablished: StateMapEntry{
		Transitions: []StateTransition{
			{
				Command:  wire.CmdGetAddr,
				NewState: StateEstablished,
			},
			{
				Command:  wire.CmdInv,
				NewState: StateEstablished,
			},
			{
				Command:  wire.CmdBlock,
				NewState: StateEstablished,
			},
			{
				Command:  wire.CmdHeaders,
				NewState: StateEstablished,
			},
		},
	},
}
