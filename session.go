// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"encoding/json"
	"errors"
	"time"
)

var errNotOpen = errors.New("expected an open packet")

// Session is the timing authority the read loop consults before every read
// attempt.
type Session interface {
	// NeedsHeartbeat reports whether a PING is owed now. An implementation
	// that answers true treats the heartbeat as sent.
	NeedsHeartbeat() bool
}

// Handshake is the JSON body of the Engine.IO OPEN packet.
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"` // milliseconds
	PingTimeout  int      `json:"pingTimeout"`  // milliseconds
}

// ParseHandshake decodes an OPEN packet payload such as `0{"sid":"..."}`.
func ParseHandshake(payload []byte) (Handshake, error) {
	var hs Handshake
	t, ok := packetType(payload)
	if !ok || t != EngineOpen {
		return hs, invalidPayload(payload, errNotOpen)
	}
	if err := json.Unmarshal(payload[1:], &hs); err != nil {
		return hs, invalidPayload(payload, err)
	}
	return hs, nil
}

// heartbeatMargin is how long before the server's ping interval elapses a
// PING is considered due.
const heartbeatMargin = 5 * time.Second

// HeartbeatSession is the Session built from a server handshake.
type HeartbeatSession struct {
	ID           string
	Upgrades     []string
	PingInterval time.Duration
	PingTimeout  time.Duration

	margin time.Duration
	last   time.Time
	now    func() time.Time
}

// NewHeartbeatSession starts the heartbeat clock at the moment of the call.
func NewHeartbeatSession(hs Handshake) *HeartbeatSession {
	s := &HeartbeatSession{
		ID:           hs.SID,
		Upgrades:     hs.Upgrades,
		PingInterval: time.Duration(hs.PingInterval) * time.Millisecond,
		PingTimeout:  time.Duration(hs.PingTimeout) * time.Millisecond,
		now:          time.Now,
	}
	s.margin = heartbeatMargin
	if s.margin >= s.PingInterval {
		s.margin = s.PingInterval / 2
	}
	s.last = s.now()
	return s
}

func (s *HeartbeatSession) NeedsHeartbeat() bool {
	if s.PingInterval <= 0 {
		return false
	}
	now := s.now()
	if now.After(s.last.Add(s.PingInterval - s.margin)) {
		s.last = now
		return true
	}
	return false
}
