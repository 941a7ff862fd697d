// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"code.hybscloud.com/sioclient/internal/wordsize"
)

const (
	frameHeaderLen    = 2
	frameMaskKeyLen   = 4
	frameMaxHeaderLen = frameHeaderLen + 8 + frameMaskKeyLen

	frameMaskBit    = 0x80
	frameLengthBits = 0x7f
	frameLen16      = 126
	frameLen64      = 127

	// frameGrowChunk caps how far the payload buffer grows ahead of the bytes
	// actually received.
	frameGrowChunk = 64 << 10
)

// frameReader reassembles one WebSocket frame at a time from a stream.
//
// A read timeout never loses bytes: the partially read frame stays in the
// reader and the next readFrame call resumes where the last one stopped.
type frameReader struct {
	rd        io.Reader
	dec       Decoder
	readLimit int64
	wide      bool
	broken    func()

	// in-flight frame
	header [frameMaxHeaderLen]byte
	offset int   // header bytes read
	length int64 // declared payload length, -1 until the length field is parsed
	raw    []byte
	got    int // bytes of raw filled
	size   int // header plus declared payload length
}

func newFrameReader(rd io.Reader, dec Decoder, readLimit int, broken func()) *frameReader {
	fr := &frameReader{
		rd:        rd,
		dec:       dec,
		readLimit: int64(readLimit),
		wide:      wordsize.Wide(),
		broken:    broken,
	}
	fr.reset()
	return fr
}

func (fr *frameReader) reset() {
	fr.offset = 0
	fr.length = -1
	fr.raw = nil
	fr.got = 0
	fr.size = 0
}

// readFrame returns the decoded bytes of the next frame, or (nil, nil) when
// the stream timed out first.
func (fr *frameReader) readFrame() ([]byte, error) {
	if fr.rd == nil {
		return nil, ErrInvalidArgument
	}

	// 1) FIN/RSV/opcode byte, then mask bit and 7-bit length.
	if err := fr.fill(fr.header[:frameHeaderLen], &fr.offset); err != nil {
		return nil, fr.fail(err, nil)
	}

	masked := fr.header[1]&frameMaskBit != 0
	extLen := 0
	switch fr.header[1] & frameLengthBits {
	case frameLen16:
		extLen = 2
	case frameLen64:
		if !fr.wide {
			fr.reset()
			return nil, ErrPlatformUnsupported
		}
		extLen = 8
	}

	// 2) Extended length.
	if err := fr.fill(fr.header[:frameHeaderLen+extLen], &fr.offset); err != nil {
		return nil, fr.fail(err, ErrInvalidFrame)
	}
	if fr.length < 0 {
		length, err := fr.parseLength(extLen)
		if err != nil {
			fr.reset()
			return nil, err
		}
		fr.length = length
	}

	// 3) Mask key. It stays in the raw frame; the decoder unmasks.
	hdrLen := frameHeaderLen + extLen
	if masked {
		hdrLen += frameMaskKeyLen
	}
	if err := fr.fill(fr.header[:hdrLen], &fr.offset); err != nil {
		return nil, fr.fail(err, nil)
	}

	// 4) Payload. The buffer grows with the bytes that arrive, never with
	// the declared length alone.
	if fr.raw == nil {
		fr.size = hdrLen + int(fr.length)
		fr.raw = make([]byte, hdrLen, min(fr.size, hdrLen+frameGrowChunk))
		fr.got = copy(fr.raw, fr.header[:hdrLen])
	}
	for fr.got < fr.size {
		if fr.got == len(fr.raw) {
			n := min(fr.size-len(fr.raw), max(len(fr.raw), frameGrowChunk))
			fr.raw = slices.Grow(fr.raw, n)[:len(fr.raw)+n]
		}
		if err := fr.fill(fr.raw, &fr.got); err != nil {
			return nil, fr.fail(err, nil)
		}
	}

	raw := fr.raw
	fr.reset()

	p, err := fr.dec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("sioclient: decode frame: %w", err)
	}
	if p == nil {
		p = []byte{}
	}
	return p, nil
}

func (fr *frameReader) parseLength(extLen int) (int64, error) {
	ext := fr.header[frameHeaderLen : frameHeaderLen+extLen]

	var n uint64
	switch extLen {
	case 2:
		n = uint64(binary.BigEndian.Uint16(ext))
		if n == 0 {
			return 0, fmt.Errorf("%w: zero extended length", ErrInvalidFrame)
		}
	case 8:
		high := uint64(binary.BigEndian.Uint32(ext[:4]))
		low := uint64(binary.BigEndian.Uint32(ext[4:]))
		n = high<<32 | low
	default:
		n = uint64(fr.header[1] & frameLengthBits)
	}

	if n > uint64(math.MaxInt-frameMaxHeaderLen) {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLong, n)
	}
	if fr.readLimit > 0 && n > uint64(fr.readLimit) {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLong, n, fr.readLimit)
	}
	return int64(n), nil
}

// fill reads into p[*off:] until p is full. An EOF after some bytes of the
// current frame were consumed is reported as io.ErrUnexpectedEOF.
func (fr *frameReader) fill(p []byte, off *int) error {
	for *off < len(p) {
		n, err := fr.readOnce(p[*off:])
		*off += n
		if err == nil || *off == len(p) {
			continue
		}
		if err == io.EOF && *off > 0 {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func (fr *frameReader) readOnce(p []byte) (int, error) {
	n, err := fr.rd.Read(p)
	// A zero-length read without a timeout is a dead peer, not an idle one.
	if len(p) != 0 && n == 0 && err == nil {
		return 0, io.ErrNoProgress
	}
	return n, err
}

// fail classifies a fill error. A timeout keeps the in-flight frame and
// yields nil. A stream that ended early inside a length field is reported as
// short; anything else drops the connection.
func (fr *frameReader) fail(err error, short error) error {
	if errors.Is(err, ErrWouldBlock) {
		return nil
	}
	fr.reset()
	if short != nil && errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", short, err)
	}
	if fr.broken != nil {
		fr.broken()
	}
	return fmt.Errorf("%w: %w", ErrConnectionBroken, err)
}
