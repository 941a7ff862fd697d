// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wordsize reports whether the platform's native integers are 64 bits
// wide.
//
// Implementation is architecture-specific via build tags where commonly known,
// and falls back to a portable runtime detection elsewhere.
package wordsize
