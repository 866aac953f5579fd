// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package g1320 reads the telemetry of a G1320 family power supply unit over
// an i2c bus.
//
// The PSU reports output current, output power, temperature and fan speed
// in the PMBus linear11 format, output voltage in a fixed point format with
// 9 fractional bits, and its presence through the VOUT_MODE byte. There are
// no writable properties.
package g1320
