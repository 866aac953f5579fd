// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

const (
	RegConfig         uint8 = 0x00 // CONFIGURATION REGISTER (R/W)
	RegADCConfig      uint8 = 0x01 // ADC CONFIGURATION REGISTER (R/W)
	RegCurrLSBCalc    uint8 = 0x02 // SHUNT CALIBRATION REGISTER (R/W)
	RegVShunt         uint8 = 0x04 // SHUNT VOLTAGE MEASUREMENT (R)
	RegVBus           uint8 = 0x05 // BUS VOLTAGE MEASUREMENT (R)
	RegDieTemp        uint8 = 0x06 // TEMPERATURE MEASUREMENT (R)
	RegCurrent        uint8 = 0x07 // CURRENT RESULT (R)
	RegPower          uint8 = 0x08 // POWER RESULT, 24 bits (R)
	RegDiagAlrt       uint8 = 0x0B // DIAGNOSTIC FLAGS AND ALERT (R/W)
	RegSOVL           uint8 = 0x0C // SHUNT OVERVOLTAGE THRESHOLD (R/W)
	RegSUVL           uint8 = 0x0D // SHUNT UNDERVOLTAGE THRESHOLD (R/W)
	RegBOVL           uint8 = 0x0E // BUS OVERVOLTAGE THRESHOLD (R/W)
	RegBUVL           uint8 = 0x0F // BUS UNDERVOLTAGE THRESHOLD (R/W)
	RegTempLimit      uint8 = 0x10 // TEMPERATURE OVER-LIMIT THRESHOLD (R/W)
	RegPwrLimit       uint8 = 0x11 // POWER OVER-LIMIT THRESHOLD (R/W)
	RegManufacturerID uint8 = 0x3E // MANUFACTURER ID (R)
	RegDeviceID       uint8 = 0x3F // DEVICE ID (R)

	// CONFIG bit 3: shunt full scale range. Set selects the ±40.96mV range.
	configADCRange uint16 = 1 << 3

	// DefaultAddress is the bus address with A0 and A1 tied to GND.
	DefaultAddress uint16 = 0x40
)
