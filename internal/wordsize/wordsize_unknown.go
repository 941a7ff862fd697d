//go:build !amd64 && !arm64 && !ppc64 && !ppc64le && !s390x && !riscv64 && !loong64 && !mips64 && !mips64le && !wasm && !386 && !arm && !mips && !mipsle

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wordsize

import "unsafe"

// detectWide determines the native integer width once at init time.
func detectWide() bool {
	var x uint
	return unsafe.Sizeof(x) == 8
}

var wide = detectWide()

// Wide reports whether native integers are 64 bits wide on otherwise-unsupported ports.
func Wide() bool { return wide }
