// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"bytes"
	"encoding/json"
	"errors"
)

// envelopePrefixLen is the Engine.IO + Socket.IO packet code prefix ("42")
// stripped before the envelope is parsed.
const envelopePrefixLen = 2

// Message is a decoded Socket.IO [type, data] envelope.
type Message struct {
	typ  string
	data json.RawMessage
}

// NewMessage returns a Message with the given type and raw JSON data.
func NewMessage(typ string, data json.RawMessage) *Message {
	return &Message{typ: typ, data: data}
}

// Type is the envelope's discriminant: an event name, or the text of a
// numeric packet code.
func (m *Message) Type() string { return m.typ }

// Data is the envelope's second element, untouched. A JSON null is returned
// as the literal "null".
func (m *Message) Data() json.RawMessage { return m.data }

// Unmarshal decodes Data into v.
func (m *Message) Unmarshal(v any) error { return json.Unmarshal(m.data, v) }

func (m *Message) String() string { return m.typ + " " + string(m.data) }

var (
	errEnvelopeArity = errors.New("envelope must have exactly two elements")
	errEnvelopeType  = errors.New("envelope type must be a non-empty string or a number")
	errEnvelopeShort = errors.New("payload shorter than packet code prefix")
)

// DecodeMessage parses a raw payload such as `42["event",{"a":1}]`.
//
// The first two bytes (the packet codes) are stripped and the remainder must
// be a JSON array of exactly two elements. The first must be a non-empty
// string or a number; the second may be anything, null included, but must be
// present. Failures are *InvalidPayloadError values carrying raw.
func DecodeMessage(raw []byte) (*Message, error) {
	if len(raw) < envelopePrefixLen {
		return nil, invalidPayload(raw, errEnvelopeShort)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw[envelopePrefixLen:], &elems); err != nil {
		return nil, invalidPayload(raw, err)
	}
	if len(elems) != 2 {
		return nil, invalidPayload(raw, errEnvelopeArity)
	}

	typ, ok := envelopeType(elems[0])
	if !ok {
		return nil, invalidPayload(raw, errEnvelopeType)
	}

	return &Message{typ: typ, data: elems[1]}, nil
}

func envelopeType(elem json.RawMessage) (string, bool) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 {
		return "", false
	}
	switch c := elem[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(elem, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(elem, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}
