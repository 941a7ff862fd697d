// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"github.com/gobwas/ws"
)

// Decoder turns one raw WebSocket frame, header and mask key included, into
// the application bytes it carries.
type Decoder interface {
	Decode(raw []byte) ([]byte, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw []byte) ([]byte, error)

func (f DecoderFunc) Decode(raw []byte) ([]byte, error) { return f(raw) }

var errInvalidUTF8 = errors.New("sioclient: text frame is not valid UTF-8")

// TextDecoder skips the frame header, unmasks the payload when a mask key is
// present, and rejects text frames that are not valid UTF-8.
var TextDecoder Decoder = DecoderFunc(decodeText)

func decodeText(raw []byte) ([]byte, error) {
	r := bytes.NewReader(raw)
	h, err := ws.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	payload := raw[len(raw)-r.Len():]
	if int64(len(payload)) != h.Length {
		return nil, ErrInvalidFrame
	}
	if h.Masked {
		ws.Cipher(payload, h.Mask, 0)
	}
	if h.OpCode == ws.OpText && !utf8.Valid(payload) {
		return nil, errInvalidUTF8
	}
	return payload, nil
}
