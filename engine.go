// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sioclient is a client-side transport engine for the Engine.IO /
// Socket.IO v1.x wire protocol (EIO=3) over a raw WebSocket stream.
//
// Semantics and design:
//   - One goroutine drives the connection. Engine.ReadWithin blocks the caller
//     for the whole read, including any PING it has to send on the way.
//   - The only suspension point is a stream read bounded by a short timeout
//     (the heartbeat check interval), so a blocked read always wakes in time
//     to ask the Session whether a heartbeat is due and to honor the caller's
//     overall deadline.
//   - PONG payloads are absorbed by the read loop and never returned.
//   - A deadline that elapses is not an error: ReadWithin returns a nil
//     payload and a nil error. A closed or reset stream is ErrConnectionBroken.
//
// Wire format: each server frame is a WebSocket frame
// (RFC 6455 header, optional 16- or 64-bit length extension, optional 4-byte
// mask key, payload). The payload is an Engine.IO text packet: one type digit
// followed by data, e.g. `42["event",{"a":1}]` for a Socket.IO EVENT carried in
// an Engine.IO MESSAGE. DecodeMessage parses the `[type, data]` envelope.
package sioclient

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/gobwas/ws"

	"code.hybscloud.com/sioclient/internal/logger"
)

// Engine reads Engine.IO payloads from a Stream and writes packets to it.
// An Engine is not safe for concurrent use; Reset and Close may be called
// from the goroutine driving the read loop.
type Engine struct {
	stream   Stream
	session  Session
	frames   *frameReader
	timeouts timeoutController

	readTimeout time.Duration
	log         logr.Logger
	now         func() time.Time
}

// NewEngine returns an Engine that owns s. session may be nil, in which case
// no heartbeat is ever sent. The stream's read timeout is set to the
// configured default.
func NewEngine(s Stream, session Session, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	if s == nil || o.HeartbeatCheckInterval <= 0 || o.Timeout < 0 || o.ReadTimeout < 0 || o.ReadLimit < 0 || o.WriteTimeout < 0 {
		return nil, ErrInvalidArgument
	}
	return newEngine(s, session, o)
}

func newEngine(s Stream, session Session, o Options) (*Engine, error) {
	dec := o.Decoder
	if dec == nil {
		dec = TextDecoder
	}
	l := o.Logger
	if !o.loggerSet {
		l = logger.GetLogger("sioclient")
	}

	e := &Engine{
		stream:  s,
		session: session,
		timeouts: timeoutController{
			checkInterval: o.HeartbeatCheckInterval,
			fallback:      o.Timeout,
		},
		readTimeout: o.ReadTimeout,
		log:         l,
		now:         time.Now,
	}
	e.frames = newFrameReader(s, dec, o.ReadLimit, e.Reset)

	if err := e.timeouts.restore(s); err != nil {
		return nil, err
	}
	if wt, ok := s.(WriteTimeoutSetter); ok {
		if err := wt.SetWriteTimeout(o.WriteTimeout); err != nil {
			return nil, fmt.Errorf("sioclient: install write timeout: %w", err)
		}
	}
	return e, nil
}

// Connected reports whether the engine still holds an open stream.
func (e *Engine) Connected() bool { return e.stream != nil }

// Session returns the heartbeat authority, or nil.
func (e *Engine) Session() Session { return e.session }

// SetSession replaces the heartbeat authority.
func (e *Engine) SetSession(s Session) { e.session = s }

// SetReadTimeout sets the overall deadline used by Read. Zero waits forever.
func (e *Engine) SetReadTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.readTimeout = d
}

// Read is ReadWithin with the timeout installed by SetReadTimeout.
func (e *Engine) Read() ([]byte, error) {
	return e.ReadWithin(e.readTimeout)
}

// ReadWithin returns the next non-PONG payload.
//
// While waiting it sends a PING each time the Session reports one is due. If
// timeout is positive and elapses first, ReadWithin returns (nil, nil). The
// stream's default read timeout is restored on every return.
func (e *Engine) ReadWithin(timeout time.Duration) (payload []byte, err error) {
	if e.stream == nil {
		return nil, fmt.Errorf("%w: read on closed engine", ErrConnectionBroken)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = e.now().Add(timeout)
	}

	if err := e.timeouts.install(e.stream, timeout); err != nil {
		return nil, err
	}
	defer func() {
		if rerr := e.timeouts.restore(e.stream); rerr != nil && err == nil {
			payload, err = nil, rerr
		}
	}()

	for {
		if !deadline.IsZero() && e.now().After(deadline) {
			return nil, nil
		}

		if e.session != nil && e.session.NeedsHeartbeat() {
			if err := e.Write(EnginePing, ""); err != nil {
				return nil, err
			}
			e.log.V(1).Info("heartbeat sent")
		}

		p, err := e.frames.readFrame()
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if isPong(p) {
			e.log.V(1).Info("pong absorbed")
			continue
		}
		return p, nil
	}
}

// ReadMessage reads the next payload and decodes its envelope. It returns
// (nil, nil) only when the timeout elapses first; a frame with an empty
// payload fails with ErrInvalidPayload.
func (e *Engine) ReadMessage(timeout time.Duration) (*Message, error) {
	p, err := e.ReadWithin(timeout)
	if err != nil || p == nil {
		return nil, err
	}
	// An empty frame is not a timeout; DecodeMessage rejects it.
	return DecodeMessage(p)
}

// Write sends one Engine.IO packet: the type digit followed by message, in a
// single masked text frame. A failed write drops the connection.
func (e *Engine) Write(code EnginePacket, message string) error {
	if e.stream == nil {
		return fmt.Errorf("%w: write on closed engine", ErrConnectionBroken)
	}

	p := make([]byte, 0, 1+len(message))
	p = append(p, code.Byte())
	p = append(p, message...)

	f := ws.MaskFrameInPlace(ws.NewTextFrame(p))
	if err := ws.WriteFrame(e.stream, f); err != nil {
		e.Reset()
		return fmt.Errorf("%w: write %s packet: %w", ErrConnectionBroken, code, err)
	}
	return nil
}

// Emit sends a Socket.IO EVENT: `42["event",data]`.
func (e *Engine) Emit(event string, data any) error {
	if event == "" {
		return ErrInvalidArgument
	}
	body, err := json.Marshal([]any{event, data})
	if err != nil {
		return fmt.Errorf("sioclient: encode %q event: %w", event, err)
	}
	return e.Write(EngineMessage, string(SocketEvent.Byte())+string(body))
}

// Reset drops the stream without telling the server. The stream's default
// read timeout is put back before it is closed. Reset is safe to call more
// than once.
func (e *Engine) Reset() {
	s := e.stream
	if s == nil {
		return
	}
	e.stream = nil
	e.frames.reset()
	_ = e.timeouts.restore(s)
	_ = s.Close()
}

// Close sends an Engine.IO CLOSE packet and drops the stream.
func (e *Engine) Close() error {
	s := e.stream
	if s == nil {
		return nil
	}
	if err := e.Write(EngineClose, ""); err != nil {
		// Write has already dropped the stream.
		return err
	}
	e.stream = nil
	e.frames.reset()
	return s.Close()
}
