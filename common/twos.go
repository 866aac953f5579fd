// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, two's complement sign extension and the register transport.
package common

// ToSigned sign-extends the low bits of raw into a signed integer.
//
// A width of 0 or of 32 and more returns raw reinterpreted as a signed 32
// bit value. Bits of raw above the width are ignored.
func ToSigned(raw uint32, bits uint8) int64 {
	if bits == 0 || bits >= 32 {
		return int64(int32(raw))
	}
	v := raw & (uint32(1)<<bits - 1)
	if v&(uint32(1)<<(bits-1)) != 0 {
		return int64(v) - int64(1)<<bits
	}
	return int64(v)
}

// DivRoundClosest divides x by d and rounds to the nearest integer. Halfway
// cases round away from zero.
func DivRoundClosest(x, d int64) int64 {
	if (x > 0) == (d > 0) {
		return (x + d/2) / d
	}
	return (x - d/2) / d
}
