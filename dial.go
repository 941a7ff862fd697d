// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gobwas/ws"
)

// Engine.IO protocol revision spoken by this package.
const protocolRevision = "3"

// EndpointURL turns a server address into the WebSocket endpoint of its
// Engine.IO server. http and https become ws and wss. path is used when the
// address has no path of its own. Existing query parameters are kept; EIO and
// transport are always set.
func EndpointURL(raw, path string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidArgument, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidArgument, raw)
	}

	if strings.Trim(u.Path, "/") == "" {
		u.Path = path
	}
	u.Path = "/" + strings.Trim(u.Path, "/") + "/"

	q := u.Query()
	q.Set("EIO", protocolRevision)
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial upgrades a connection to the server at rawURL and completes the
// Engine.IO open exchange: an OPEN packet whose JSON body becomes the
// engine's HeartbeatSession, followed by the Socket.IO CONNECT for the
// default namespace. Any failure is reported as ErrHandshake.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	if o.HeartbeatCheckInterval <= 0 || o.Timeout < 0 || o.ReadTimeout < 0 || o.ReadLimit < 0 || o.WriteTimeout < 0 || o.DialTimeout < 0 {
		return nil, ErrInvalidArgument
	}

	endpoint, err := EndpointURL(rawURL, o.Path)
	if err != nil {
		return nil, err
	}

	d := ws.Dialer{Timeout: o.DialTimeout}
	if len(o.Header) > 0 {
		d.Header = ws.HandshakeHeaderHTTP(o.Header)
	}
	conn, br, _, err := d.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	e, err := newEngine(NewStream(conn, br), nil, o)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	timeout := o.DialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout == 0 || left < timeout {
			timeout = max(left, time.Millisecond)
		}
	}
	if err := e.handshake(timeout); err != nil {
		e.Reset()
		return nil, err
	}
	return e, nil
}

func (e *Engine) handshake(timeout time.Duration) error {
	p, err := e.expect(timeout, "open")
	if err != nil {
		return err
	}
	hs, err := ParseHandshake(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	e.SetSession(NewHeartbeatSession(hs))

	p, err = e.expect(timeout, "connect")
	if err != nil {
		return err
	}
	connect := []byte{EngineMessage.Byte(), SocketConnect.Byte()}
	if !bytes.HasPrefix(p, connect) {
		return fmt.Errorf("%w: expected connect, got %q", ErrHandshake, p)
	}

	e.log.V(1).Info("handshake accepted", "sid", hs.SID, "pingInterval", hs.PingInterval, "pingTimeout", hs.PingTimeout)
	return nil
}

func (e *Engine) expect(timeout time.Duration, what string) ([]byte, error) {
	p, err := e.ReadWithin(timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s packet: %w", ErrHandshake, what, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: timed out waiting for %s packet", ErrHandshake, what)
	}
	return p, nil
}
