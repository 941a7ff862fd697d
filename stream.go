// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/gobwas/ws"
)

// Stream is the byte stream an Engine reads frames from and writes frames to.
//
// Read follows io.Reader and may return fewer bytes than requested. When the
// installed read timeout elapses before any byte arrives, Read returns
// ErrWouldBlock; io.EOF or any other error means the connection is gone.
type Stream interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds each subsequent Read. Zero removes the bound.
	SetReadTimeout(d time.Duration) error
}

// WriteTimeoutSetter is implemented by streams whose writes can be bounded.
// The Engine installs Options.WriteTimeout on such streams.
type WriteTimeoutSetter interface {
	SetWriteTimeout(d time.Duration) error
}

// NewStream adapts a connection returned by a WebSocket dialer. br holds bytes
// the dialer already buffered past the upgrade response and may be nil.
func NewStream(conn net.Conn, br *bufio.Reader) Stream {
	return &netStream{conn: conn, br: br}
}

type netStream struct {
	conn         net.Conn
	br           *bufio.Reader
	timeout      time.Duration
	writeTimeout time.Duration
}

func (s *netStream) SetWriteTimeout(d time.Duration) error {
	if d < 0 {
		return ErrInvalidArgument
	}
	s.writeTimeout = d
	return nil
}

func (s *netStream) SetReadTimeout(d time.Duration) error {
	if d < 0 {
		return ErrInvalidArgument
	}
	s.timeout = d
	return nil
}

func (s *netStream) Read(p []byte) (int, error) {
	if s.br != nil {
		if s.br.Buffered() > 0 {
			return s.br.Read(p)
		}
		ws.PutReader(s.br)
		s.br = nil
	}

	var deadline time.Time
	if s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}

	n, err := s.conn.Read(p)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (s *netStream) Write(p []byte) (int, error) {
	var deadline time.Time
	if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return 0, err
	}
	return s.conn.Write(p)
}

func (s *netStream) Close() error {
	if s.br != nil {
		ws.PutReader(s.br)
		s.br = nil
	}
	return s.conn.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
