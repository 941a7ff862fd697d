// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

// Handler dispatches messages read from a client to listeners.
type Handler struct {
	*dispatcher
}

func NewHandler(client Reader, opts ...Option) *Handler {
	return &Handler{dispatcher: newDispatcher(client, opts)}
}

// Client returns the reader the handler drives.
func (h *Handler) Client() Reader { return h.rd }

// AddListener registers cb for messages of type event, replacing any earlier
// registration. Use Default to replace the fallback. A nil cb removes the
// registration.
func (h *Handler) AddListener(event string, cb Callback) { h.set(event, cb) }

// RemoveListener unregisters event. Removing Default restores the built-in
// fallback, which logs the message.
func (h *Handler) RemoveListener(event string) { h.unset(event) }

// Listener dispatches messages read from a transport to handlers.
type Listener struct {
	*dispatcher
}

func NewListener(transport Reader, opts ...Option) *Listener {
	return &Listener{dispatcher: newDispatcher(transport, opts)}
}

// Transport returns the reader the listener drives.
func (l *Listener) Transport() Reader { return l.rd }

// AddHandler registers cb for messages of type typ, replacing any earlier
// registration.
func (l *Listener) AddHandler(typ string, cb Callback) { l.set(typ, cb) }

// RemoveHandler unregisters typ.
func (l *Listener) RemoveHandler(typ string) { l.unset(typ) }
