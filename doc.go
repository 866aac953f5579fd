// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package powermon is a container for power monitoring device drivers.
//
// ina237 decodes the TI INA237 current, voltage, power and temperature
// monitor. g1320 decodes the PMBus linear11 telemetry of G1320 family power
// supplies. Both talk to the device through the register transport in
// package common.
package powermon
