// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logger holds the process-wide logr.Logger used when a caller does
// not supply one.
//
// The default sink is stdr writing to stderr. LOG_ENABLE=false discards all
// output; LOG_LEVEL (or DEBUG=true) raises the stdr verbosity so V(1) traces
// become visible.
package logger

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

var l = newDefault()

func newDefault() logr.Logger {
	if !envBool(envLogEnable, true) {
		return logr.Discard()
	}
	stdr.SetVerbosity(verbosity())
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
}

// ReplaceLogger swaps the process-wide logger. Loggers already handed out by
// GetLogger keep their old sink.
func ReplaceLogger(logger logr.Logger) {
	l = logger
}

func GetLogger(name string) logr.Logger {
	return l.WithName(name)
}
