// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"code.hybscloud.com/sioclient"
	"code.hybscloud.com/sioclient/internal/logger"
)

// Default is the reserved key of the fallback callback. Message types are
// never empty, so no message is dispatched to it by name.
const Default = ""

// Reader yields raw Engine.IO payloads. A nil payload with a nil error means
// nothing arrived before the reader's own deadline. *sioclient.Engine
// satisfies Reader.
type Reader interface {
	Read() ([]byte, error)
}

// Callback receives one decoded message.
type Callback func(msg *sioclient.Message)

// Options configures a dispatcher.
type Options struct {
	// OnError receives payloads that are not valid envelopes. When nil they
	// are logged and skipped.
	OnError func(err error)

	// Logger receives debug traces. Unless set through WithLogger the
	// package logger is used.
	Logger    logr.Logger
	loggerSet bool
}

type Option func(*Options)

func WithErrorHandler(fn func(err error)) Option {
	return func(o *Options) { o.OnError = fn }
}

func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger, o.loggerSet = l, true }
}

type dispatcher struct {
	rd      Reader
	onError func(error)
	log     logr.Logger

	mu        sync.Mutex
	callbacks map[string]Callback

	stopped atomic.Bool
}

func newDispatcher(rd Reader, opts []Option) *dispatcher {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	d := &dispatcher{
		rd:        rd,
		onError:   o.OnError,
		log:       o.Logger,
		callbacks: make(map[string]Callback),
	}
	if !o.loggerSet {
		d.log = logger.GetLogger("event")
	}
	d.callbacks[Default] = d.report
	return d
}

// report is the built-in Default callback.
func (d *dispatcher) report(msg *sioclient.Message) {
	d.log.V(1).Info("unhandled message", "type", msg.Type(), "data", string(msg.Data()))
}

func (d *dispatcher) set(key string, cb Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cb == nil {
		d.remove(key)
		return
	}
	d.callbacks[key] = cb
}

// remove must be called with mu held. Removing Default reinstates the
// built-in report callback.
func (d *dispatcher) remove(key string) {
	if key == Default {
		d.callbacks[Default] = d.report
		return
	}
	delete(d.callbacks, key)
}

func (d *dispatcher) unset(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(key)
}

func (d *dispatcher) lookup(typ string) Callback {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cb, ok := d.callbacks[typ]; ok {
		return cb
	}
	return d.callbacks[Default]
}

// Start reads and dispatches until Stop is called or the reader fails.
// Invalid envelopes do not end the loop. Start returns nil after Stop and the
// reader's error otherwise.
func (d *dispatcher) Start() error {
	if d.rd == nil {
		return sioclient.ErrInvalidArgument
	}
	d.stopped.Store(false)
	for !d.stopped.Load() {
		if err := d.step(); err != nil {
			return err
		}
	}
	return nil
}

// step handles at most one payload.
func (d *dispatcher) step() error {
	p, err := d.rd.Read()
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	msg, err := sioclient.DecodeMessage(p)
	if err != nil {
		if !errors.Is(err, sioclient.ErrInvalidPayload) {
			return err
		}
		if d.onError != nil {
			d.onError(err)
		} else {
			d.log.V(1).Info("invalid payload skipped", "error", err.Error())
		}
		return nil
	}

	d.lookup(msg.Type())(msg)
	return nil
}

// Stop ends Start after the read in progress returns. It is safe to call
// from any goroutine, including a callback.
func (d *dispatcher) Stop() { d.stopped.Store(true) }
