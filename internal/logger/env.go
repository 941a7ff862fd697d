// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"os"
	"strconv"
)

const (
	envLogLevel  = "LOG_LEVEL"
	envLogEnable = "LOG_ENABLE"
	envDebug     = "DEBUG"
)

func verbosity() int {
	if v := envInt(envLogLevel, -1); v >= 0 {
		return v
	}
	if envBool(envDebug, false) {
		return 1
	}
	return 0
}

func envInt(env string, def int) int {
	n, err := strconv.Atoi(os.Getenv(env))
	if err != nil {
		return def
	}

	return n
}

func envBool(env string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(env))
	if err != nil {
		return def
	}

	return b
}
