// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import "strconv"

// EnginePacket is an Engine.IO packet type. On the text wire it is the single
// ASCII digit leading every payload.
type EnginePacket byte

const (
	EngineOpen EnginePacket = iota
	EngineClose
	EnginePing
	EnginePong
	EngineMessage
	EngineUpgrade
	EngineNoop
)

// Byte returns the packet type as its text-wire digit.
func (t EnginePacket) Byte() byte { return byte(t) + '0' }

func (t EnginePacket) String() string {
	switch t {
	case EngineOpen:
		return "open"
	case EngineClose:
		return "close"
	case EnginePing:
		return "ping"
	case EnginePong:
		return "pong"
	case EngineMessage:
		return "message"
	case EngineUpgrade:
		return "upgrade"
	case EngineNoop:
		return "noop"
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// SocketPacket is a Socket.IO packet type, carried as the second digit of an
// Engine.IO message payload.
type SocketPacket byte

const (
	SocketConnect SocketPacket = iota
	SocketDisconnect
	SocketEvent
	SocketAck
	SocketError
	SocketBinaryEvent
	SocketBinaryAck
)

func (t SocketPacket) Byte() byte { return byte(t) + '0' }

func (t SocketPacket) String() string {
	switch t {
	case SocketConnect:
		return "connect"
	case SocketDisconnect:
		return "disconnect"
	case SocketEvent:
		return "event"
	case SocketAck:
		return "ack"
	case SocketError:
		return "error"
	case SocketBinaryEvent:
		return "binary event"
	case SocketBinaryAck:
		return "binary ack"
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// packetType returns the Engine.IO packet type of a decoded frame payload.
func packetType(payload []byte) (EnginePacket, bool) {
	if len(payload) == 0 || payload[0] < '0' || payload[0] > '9' {
		return 0, false
	}
	return EnginePacket(payload[0] - '0'), true
}

func isPong(payload []byte) bool {
	t, ok := packetType(payload)
	return ok && t == EnginePong
}
