// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package event dispatches decoded Socket.IO messages to callbacks keyed by
// message type.
//
// Handler and Listener are the same dispatcher under two names: a Handler
// owns a client and registers listeners, a Listener owns a transport and
// registers handlers. Both run a cooperative loop in Start that reads one
// payload at a time, decodes its [type, data] envelope and calls the
// callback registered for the type, or the Default callback when there is
// none. Stop takes effect between reads.
package event
