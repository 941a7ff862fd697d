//go:build 386 || arm || mips || mipsle

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wordsize

// Wide reports false on common 32-bit Go ports.
func Wide() bool { return false }
