// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina237 controls a Texas Instruments INA237 current, voltage, power
// and temperature monitor over an i2c bus.
//
// Readings are exposed two ways: as hwmon style named attributes returning
// decimal strings (Show and Store), and as physic values (Read).
//
// # Datasheet
//
// https://www.ti.com/product/INA237-Q1
package ina237
