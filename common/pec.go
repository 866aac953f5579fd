// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

// PEC calculates the SMBus packet error code, a CRC-8 with polynomial
// x^8+x^2+x+1 and zero initial value, over the concatenation of the byte
// slices.
func PEC(bytes ...[]byte) byte {
	var crc byte
	for _, b := range bytes {
		for _, val := range b {
			crc ^= val
			for i := 0; i < 8; i++ {
				if (crc & 0x80) == 0 {
					crc <<= 1
				} else {
					crc = (crc << 1) ^ 0x07
				}
			}
		}
	}
	return crc
}
