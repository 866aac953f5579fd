// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g1320

const (
	RegVoutMode  uint8 = 0x20
	RegReadVout  uint8 = 0x8b
	RegReadIout  uint8 = 0x8c
	RegReadTemp1 uint8 = 0x8d
	RegFanSpeed1 uint8 = 0x90
	RegReadPout  uint8 = 0x96
	RegMfrID     uint8 = 0x99

	// VOUT_MODE value reported by a populated slot.
	voutModePresent = 0x17
)
