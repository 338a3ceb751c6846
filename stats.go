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
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"go.uber.org/atomic"
)

// ConnectionStats tracks traffic and dispatch counters for a single connection.
// Counters are safe for concurrent use
type ConnectionStats struct {
	bytesReceived    atomic.Uint64
	bytesSent        atomic.Uint64
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	messagesDropped  atomic.Uint64
	unknownCommands  atomic.Uint64

	mu           sync.Mutex
	dispatchTime ewma.MovingAverage
	connectedAt  time.Time
}

// StatsSnapshot is a point-in-time copy of ConnectionStats
type StatsSnapshot struct {
	BytesReceived    uint64
	BytesSent        uint64
	MessagesReceived uint64
	MessagesSent     uint64
	MessagesDropped  uint64
	UnknownCommands  uint64
	// AvgDispatchTime is an exponentially weighted moving average of the time
	// spent handling a single message
	AvgDispatchTime time.Duration
	ConnectedAt     time.Time
}

func newConnectionStats() *ConnectionStats {
	return &ConnectionStats{
		dispatchTime: ewma.NewMovingAverage(),
	}
}

func (s *ConnectionStats) recordConnected() {
	s.mu.Lock()
	s.connectedAt = time.Now()
	s.mu.Unlock()
}

func (s *ConnectionStats) recordReceived(n int) {
	s.bytesReceived.Add(uint64(n))
}

func (s *ConnectionStats) recordSent(n int) {
	s.bytesSent.Add(uint64(n))
	s.messagesSent.Inc()
}

func (s *ConnectionStats) recordDropped() {
	s.messagesDropped.Inc()
}

func (s *ConnectionStats) recordUnknown() {
	s.unknownCommands.Inc()
}

func (s *ConnectionStats) recordDispatch(duration time.Duration) {
	s.messagesReceived.Inc()
	s.mu.Lock()
	s.dispatchTime.Add(float64(duration))
	s.mu.Unlock()
}

// Snapshot returns the current counter values
func (s *ConnectionStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		BytesReceived:    s.bytesReceived.Load(),
		BytesSent:        s.bytesSent.Load(),
		MessagesReceived: s.messagesReceived.Load(),
		MessagesSent:     s.messagesSent.Load(),
		MessagesDropped:  s.messagesDropped.Load(),
		UnknownCommands:  s.unknownCommands.Load(),
		AvgDispatchTime:  time.Duration(s.dispatchTime.Value()),
		ConnectedAt:      s.connectedAt,
	}
}
