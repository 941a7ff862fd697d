// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/gobwas/ws"
)

type step struct {
	b   []byte
	err error
}

// scriptedStream simulates a transport. A step with bytes is served across
// as many reads as the caller's buffer needs; a step without bytes returns
// (0, err) once. When the script runs out every read returns tail.
type scriptedStream struct {
	steps []step
	step  int
	off   int
	tail  error

	timeout  time.Duration
	timeouts []time.Duration

	written  bytes.Buffer
	writeErr error
	closed   bool

	// onWouldBlock runs before a timed-out read returns.
	onWouldBlock func(timeout time.Duration)
}

func newScriptedStream(steps ...step) *scriptedStream {
	return &scriptedStream{steps: steps, tail: io.EOF}
}

func (s *scriptedStream) Read(p []byte) (int, error) {
	for {
		if s.step >= len(s.steps) {
			return 0, s.timedOut(s.tail)
		}
		st := s.steps[s.step]
		if len(st.b) == 0 {
			s.step++
			s.off = 0
			return 0, s.timedOut(st.err)
		}
		if s.off >= len(st.b) {
			s.step++
			s.off = 0
			continue
		}
		n := copy(p, st.b[s.off:])
		s.off += n
		return n, nil
	}
}

func (s *scriptedStream) timedOut(err error) error {
	if errors.Is(err, ErrWouldBlock) && s.onWouldBlock != nil {
		s.onWouldBlock(s.timeout)
	}
	return err
}

func (s *scriptedStream) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.written.Write(p)
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

func (s *scriptedStream) SetReadTimeout(d time.Duration) error {
	s.timeout = d
	s.timeouts = append(s.timeouts, d)
	return nil
}

// writtenPayloads decodes every client frame written to the stream.
func (s *scriptedStream) writtenPayloads() ([]string, error) {
	var out []string
	r := bytes.NewReader(s.written.Bytes())
	for r.Len() > 0 {
		f, err := ws.ReadFrame(r)
		if err != nil {
			return out, err
		}
		if !f.Header.Masked {
			return out, errors.New("client frame is not masked")
		}
		f = ws.UnmaskFrameInPlace(f)
		out = append(out, string(f.Payload))
	}
	return out, nil
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// textFrame is a server frame: unmasked, FIN set.
func textFrame(payload string) []byte {
	return ws.MustCompileFrame(ws.NewTextFrame([]byte(payload)))
}

func maskedTextFrame(payload string, mask [4]byte) []byte {
	return ws.MustCompileFrame(ws.MaskFrameWith(ws.NewTextFrame([]byte(payload)), mask))
}

func data(b ...[]byte) step { return step{b: bytes.Join(b, nil)} }

func wouldBlock() step { return step{err: ErrWouldBlock} }

// alwaysDue wants a heartbeat on every check.
type alwaysDue struct{ checks int }

func (s *alwaysDue) NeedsHeartbeat() bool {
	s.checks++
	return true
}
