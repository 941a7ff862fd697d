// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/sioclient"
)

const openPacket = `0{"sid":"abc","upgrades":[],"pingInterval":%d,"pingTimeout":60000}`

// newServer runs handle for every upgraded connection on g.
func newServer(t *testing.T, g *errgroup.Group, handle func(r *http.Request, c *websocket.Conn) error) *httptest.Server {
	t.Helper()
	var up websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.Go(func() error {
			defer c.Close()
			return handle(r, c)
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func send(c *websocket.Conn, format string, args ...any) error {
	return c.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(format, args...)))
}

func expect(c *websocket.Conn, want string) error {
	_, p, err := c.ReadMessage()
	if err != nil {
		return err
	}
	if string(p) != want {
		return fmt.Errorf("server got %q want %q", p, want)
	}
	return nil
}

func dialOptions() []sioclient.Option {
	return []sioclient.Option{
		sioclient.WithLogger(logr.Discard()),
		sioclient.WithHeartbeatCheckInterval(10 * time.Millisecond),
		sioclient.WithDialTimeout(5 * time.Second),
	}
}

func TestDial_EmitAndReceive(t *testing.T) {
	must := require.New(t)
	should := assert.New(t)

	var g errgroup.Group
	srv := newServer(t, &g, func(r *http.Request, c *websocket.Conn) error {
		q := r.URL.Query()
		if r.URL.Path != "/socket.io/" || q.Get("EIO") != "3" || q.Get("transport") != "websocket" {
			return fmt.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("Authorization") != "Bearer t0k" {
			return fmt.Errorf("missing header")
		}
		if err := send(c, openPacket, 25000); err != nil {
			return err
		}
		if err := send(c, "40"); err != nil {
			return err
		}
		if err := expect(c, `42["hello",{"n":1}]`); err != nil {
			return err
		}
		if err := send(c, `42["welcome","ada"]`); err != nil {
			return err
		}
		return expect(c, "1")
	})

	opts := append(dialOptions(), sioclient.WithHeader("Authorization", "Bearer t0k"))
	e, err := sioclient.Dial(context.Background(), srv.URL, opts...)
	must.NoError(err)

	hs, ok := e.Session().(*sioclient.HeartbeatSession)
	must.True(ok)
	should.Equal("abc", hs.ID)
	should.Equal(25*time.Second, hs.PingInterval)

	must.NoError(e.Emit("hello", map[string]int{"n": 1}))
	m, err := e.ReadMessage(5 * time.Second)
	must.NoError(err)
	must.NotNil(m)
	should.Equal("welcome", m.Type())
	should.JSONEq(`"ada"`, string(m.Data()))

	must.NoError(e.Close())
	must.NoError(g.Wait())
}

func TestDial_HeartbeatAndPongAbsorbed(t *testing.T) {
	must := require.New(t)

	var g errgroup.Group
	srv := newServer(t, &g, func(_ *http.Request, c *websocket.Conn) error {
		if err := send(c, openPacket, 100); err != nil {
			return err
		}
		if err := send(c, "40"); err != nil {
			return err
		}
		if err := expect(c, "2"); err != nil {
			return err
		}
		if err := send(c, "3"); err != nil {
			return err
		}
		if err := send(c, `42["after","ping"]`); err != nil {
			return err
		}
		// More pings may arrive before the client closes.
		for {
			_, p, err := c.ReadMessage()
			if err != nil {
				return err
			}
			if string(p) == "1" {
				return nil
			}
		}
	})

	e, err := sioclient.Dial(context.Background(), srv.URL, dialOptions()...)
	must.NoError(err)

	m, err := e.ReadMessage(5 * time.Second)
	must.NoError(err)
	must.NotNil(m)
	must.Equal("after", m.Type())

	must.NoError(e.Close())
	must.NoError(g.Wait())
}

func TestDial_HandshakeFailures(t *testing.T) {
	cases := map[string]func(c *websocket.Conn) error{
		"connect refused": func(c *websocket.Conn) error {
			if err := send(c, openPacket, 25000); err != nil {
				return err
			}
			return send(c, `44{"message":"unauthorized"}`)
		},
		"no open packet": func(c *websocket.Conn) error {
			return send(c, "40")
		},
		"server hangs up": func(c *websocket.Conn) error {
			return nil
		},
	}
	for name, handle := range cases {
		t.Run(name, func(t *testing.T) {
			var g errgroup.Group
			srv := newServer(t, &g, func(_ *http.Request, c *websocket.Conn) error { return handle(c) })

			_, err := sioclient.Dial(context.Background(), srv.URL, dialOptions()...)
			assert.ErrorIs(t, err, sioclient.ErrHandshake)
			assert.NoError(t, g.Wait())
		})
	}
}

func TestDial_UpgradeRejected(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := sioclient.Dial(context.Background(), srv.URL, dialOptions()...)
	assert.ErrorIs(t, err, sioclient.ErrHandshake)
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := sioclient.Dial(context.Background(), "ftp://example.com", dialOptions()...)
	assert.True(t, errors.Is(err, sioclient.ErrInvalidArgument))
}

func TestEndpointURL(t *testing.T) {
	cases := []struct {
		raw, path, want string
	}{
		{"http://localhost:3000", "socket.io", "ws://localhost:3000/socket.io/?EIO=3&transport=websocket"},
		{"https://example.com/", "socket.io", "wss://example.com/socket.io/?EIO=3&transport=websocket"},
		{"ws://example.com/custom", "socket.io", "ws://example.com/custom/?EIO=3&transport=websocket"},
		{"wss://example.com/a/b/?token=x", "socket.io", "wss://example.com/a/b/?EIO=3&token=x&transport=websocket"},
		{"http://example.com?EIO=4", "/engine.io/", "ws://example.com/engine.io/?EIO=3&transport=websocket"},
	}
	for _, tc := range cases {
		got, err := sioclient.EndpointURL(tc.raw, tc.path)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	for _, raw := range []string{"ftp://example.com", "http://", "://bad"} {
		_, err := sioclient.EndpointURL(raw, "socket.io")
		assert.ErrorIs(t, err, sioclient.ErrInvalidArgument, raw)
	}
}
