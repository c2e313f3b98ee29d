// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "math"

// float32Bits returns the IEEE-754 binary32 bit pattern of f.
func float32Bits(f float32) uint32 { return math.Float32bits(f) }

// fixedToFloat decodes a LegacyX base-4096 fixed-point word: the real
// number is bits/4096.
func fixedToFloat(bits uint32) float32 {
	return float32(float64(bits) / 4096.0)
}

// floatToFixed encodes a real number as a LegacyX base-4096 word:
// round(f*4096).
func floatToFixed(f float32) uint32 {
	return uint32(float64(f)*4096.0 + 0.5)
}
