// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"errors"
	"strconv"

	"code.hybscloud.com/iox"
)

var (
	// ErrInvalidArgument reports an invalid configuration or a nil stream.
	ErrInvalidArgument = errors.New("sioclient: invalid argument")

	// ErrConnectionBroken reports that the stream is not open, or that the peer
	// closed or reset it. The engine has already dropped its stream when this
	// error is returned; every later read fails the same way.
	ErrConnectionBroken = errors.New("sioclient: connection broken")

	// ErrInvalidFrame reports a malformed WebSocket length extension.
	ErrInvalidFrame = errors.New("sioclient: invalid frame")

	// ErrPlatformUnsupported reports a 64-bit frame length on a platform whose
	// native integers are narrower than 64 bits. It is not retryable.
	ErrPlatformUnsupported = errors.New("sioclient: 64-bit frame length unsupported on this platform")

	// ErrTooLong reports a frame length above the configured read limit.
	ErrTooLong = errors.New("sioclient: frame too long")

	// ErrInvalidPayload reports a payload that is not a [type, data] envelope.
	// The concrete error is an *InvalidPayloadError carrying the raw payload.
	ErrInvalidPayload = errors.New("sioclient: invalid payload")

	// ErrHandshake reports a failed WebSocket upgrade or Engine.IO open exchange.
	ErrHandshake = errors.New("sioclient: handshake failed")
)

// ErrWouldBlock is the stream's "timed out" indicator: a read that returns it
// made no further progress before the installed read timeout elapsed. It is a
// control-flow signal, not a failure; the connection is still usable.
var ErrWouldBlock = iox.ErrWouldBlock

// InvalidPayloadError is returned by DecodeMessage. It matches
// ErrInvalidPayload with errors.Is and keeps the offending payload for
// diagnostics. Callers may skip the payload and keep reading.
type InvalidPayloadError struct {
	Payload []byte
	Err     error
}

func (e *InvalidPayloadError) Error() string {
	s := "sioclient: invalid payload " + strconv.Quote(string(e.Payload))
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *InvalidPayloadError) Is(target error) bool { return target == ErrInvalidPayload }

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

func invalidPayload(raw []byte, cause error) error {
	p := make([]byte, len(raw))
	copy(p, raw)
	return &InvalidPayloadError{Payload: p, Err: cause}
}
