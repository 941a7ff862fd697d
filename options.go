// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sioclient

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"
)

// Options configures an Engine.
type Options struct {
	// HeartbeatCheckInterval bounds every low-level read so the read loop can
	// re-evaluate heartbeat and deadline at least this often.
	HeartbeatCheckInterval time.Duration

	// Timeout is the stream's default read timeout. It is restored after every
	// read loop exits. Zero means reads never time out outside the loop.
	Timeout time.Duration

	// ReadTimeout is the overall deadline used by Engine.Read. Zero means
	// Read waits until a payload arrives.
	ReadTimeout time.Duration

	// ReadLimit caps the declared payload length of a single frame (bytes).
	// Zero means no limit.
	ReadLimit int

	// WriteTimeout bounds each frame write on streams that support it (see
	// WriteTimeoutSetter). Zero means writes may block forever.
	WriteTimeout time.Duration

	// Decoder turns a raw frame into its application bytes. Nil selects
	// TextDecoder.
	Decoder Decoder

	// Logger receives debug traces. Unless set through WithLogger the
	// package logger is used.
	Logger    logr.Logger
	loggerSet bool

	// DialTimeout bounds the WebSocket upgrade and the Engine.IO open exchange
	// performed by Dial.
	DialTimeout time.Duration

	// Path is the server endpoint path used by Dial when the URL has none.
	Path string

	// Header is sent with the WebSocket upgrade request.
	Header http.Header
}

// DefaultReadLimit is the frame payload limit used unless WithReadLimit
// overrides it.
const DefaultReadLimit = 16 << 20

var defaultOptions = Options{
	HeartbeatCheckInterval: time.Second,
	Timeout:                60 * time.Second,
	ReadTimeout:            0,
	ReadLimit:              DefaultReadLimit,
	WriteTimeout:           10 * time.Second,
	DialTimeout:            20 * time.Second,
	Path:                   "socket.io",
}

type Option func(*Options)

// WithHeartbeatCheckInterval sets how often a blocked read wakes up to check
// whether a heartbeat is owed.
func WithHeartbeatCheckInterval(d time.Duration) Option {
	return func(o *Options) { o.HeartbeatCheckInterval = d }
}

// WithTimeout sets the stream's default read timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithReadTimeout sets the overall deadline used by Engine.Read.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReadTimeout = d }
}

func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithWriteTimeout bounds each frame write, including the heartbeat PINGs
// sent from inside a read.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) { o.WriteTimeout = d }
}

func WithDecoder(d Decoder) Option {
	return func(o *Options) { o.Decoder = d }
}

func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger, o.loggerSet = l, true }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithHeader adds a header to the WebSocket upgrade request.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Header == nil {
			o.Header = make(http.Header)
		}
		o.Header.Add(key, value)
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
