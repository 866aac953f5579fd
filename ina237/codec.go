// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"fmt"
	"math"

	"github.com/GermanBionicSystems/powermon/common"
)

const (
	// DefaultShuntResistorMicroOhms is used when no shunt value is configured.
	DefaultShuntResistorMicroOhms uint32 = 2000
	// DefaultMaxExpectCurrentMicroAmps is used when no maximum current is
	// configured.
	DefaultMaxExpectCurrentMicroAmps uint32 = 16 * 1000 * 1000

	currentLSBDivisor int64 = 32768 // 2^15

	shuntLSBWide   int64 = 5000 // ADCRANGE=0
	shuntLSBNarrow int64 = 1250 // ADCRANGE=1
	busLSB         int64 = 3125
	dieTempLSB     int64 = 125
)

// Calibration holds the board parameters that current and power scaling
// derive from. It is fixed once the device is constructed.
type Calibration struct {
	ShuntResistorMicroOhms    uint32
	MaxExpectCurrentMicroAmps uint32
}

// CurrentLSB returns the current step size in µA.
func (c Calibration) CurrentLSB() int64 {
	return common.DivRoundClosest(int64(c.MaxExpectCurrentMicroAmps), currentLSBDivisor)
}

// PowerLSB returns the POWER register step size.
func (c Calibration) PowerLSB() int64 {
	return common.DivRoundClosest(c.CurrentLSB()*200, 1000)
}

// PowerLimitLSB returns the PWR_LIMIT register step size.
func (c Calibration) PowerLimitLSB() int64 {
	return common.DivRoundClosest(256*200*c.CurrentLSB(), 1000)
}

// Register returns the value of the shunt calibration register.
//
// The maximum expected current must be large enough for a non zero current
// step and the result must fit 16 bits.
func (c Calibration) Register() (uint16, error) {
	lsb := c.CurrentLSB()
	if lsb == 0 {
		return 0, fmt.Errorf("ina237: max expected current %dµA gives a zero current LSB: %w", c.MaxExpectCurrentMicroAmps, common.ErrRange)
	}
	t := common.DivRoundClosest(lsb*819, 1000)
	reg := common.DivRoundClosest(t*int64(c.ShuntResistorMicroOhms), 1000)
	if reg > math.MaxUint16 {
		return 0, fmt.Errorf("ina237: calibration value %d does not fit 16 bits: %w", reg, common.ErrRange)
	}
	return uint16(reg), nil
}

// ShuntLSB returns the shunt voltage step size in nV selected by the ADCRANGE
// bit of config.
func ShuntLSB(config uint16) int64 {
	if config&configADCRange == 0 {
		return shuntLSBWide
	}
	return shuntLSBNarrow
}

// DecodeDieTemp converts DIETEMP to m°C.
func DecodeDieTemp(raw uint16) int64 {
	return int64(raw>>4) * dieTempLSB
}

// DecodeShuntVoltage converts VSHUNT, SOVL or SUVL to µV. config is the
// CONFIG register read along with raw.
func DecodeShuntVoltage(raw, config uint16) int64 {
	return common.DivRoundClosest(common.ToSigned(uint32(raw), 16)*ShuntLSB(config), 1000)
}

// DecodeBusVoltage converts VBUS, BOVL or BUVL to mV.
func DecodeBusVoltage(raw uint16) int64 {
	return common.DivRoundClosest(common.ToSigned(uint32(raw), 16)*busLSB, 1000)
}

// EncodeBusVoltage converts a BOVL or BUVL threshold in mV to its register
// value.
func EncodeBusVoltage(mv int64) (uint16, error) {
	if mv > math.MaxInt64/1000 || mv < math.MinInt64/1000 {
		return 0, fmt.Errorf("ina237: bus voltage %dmV: %w", mv, common.ErrRange)
	}
	reg := common.DivRoundClosest(mv*1000, busLSB)
	if reg < math.MinInt16 || reg > math.MaxInt16 {
		return 0, fmt.Errorf("ina237: bus voltage %dmV: %w", mv, common.ErrRange)
	}
	return uint16(int16(reg)), nil
}

// DecodeCurrent converts CURRENT to mA.
func DecodeCurrent(raw uint16, c Calibration) int64 {
	return common.DivRoundClosest(common.ToSigned(uint32(raw), 16)*c.CurrentLSB(), 1000)
}

// PowerWord assembles the 24 bit POWER register from its bytes in wire order.
func PowerWord(b []byte) (uint32, error) {
	if len(b) != 3 {
		return 0, fmt.Errorf("ina237: power register has %d bytes: %w", len(b), common.ErrShortRead)
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// DecodePower converts the 24 bit POWER register to W.
func DecodePower(raw uint32, c Calibration) int64 {
	return common.DivRoundClosest(int64(raw&0xffffff)*c.PowerLSB(), 1000*1000)
}

// DecodePowerLimit converts PWR_LIMIT to W.
func DecodePowerLimit(raw uint16, c Calibration) int64 {
	return common.DivRoundClosest(int64(raw)*c.PowerLimitLSB(), 1000*1000)
}

// EncodePowerLimit converts a power limit in W to the PWR_LIMIT register
// value.
func EncodePowerLimit(w int64, c Calibration) (uint16, error) {
	lsb := c.PowerLimitLSB()
	if lsb == 0 {
		return 0, fmt.Errorf("ina237: zero power limit LSB: %w", common.ErrRange)
	}
	if w > math.MaxInt64/(1000*1000) || w < math.MinInt64/(1000*1000) {
		return 0, fmt.Errorf("ina237: power limit %dW: %w", w, common.ErrRange)
	}
	reg := common.DivRoundClosest(w*1000*1000, lsb)
	if reg < 0 || reg > math.MaxUint16 {
		return 0, fmt.Errorf("ina237: power limit %dW: %w", w, common.ErrRange)
	}
	return uint16(reg), nil
}

// codec converts a raw register value of one quantity kind. config is the
// CONFIG snapshot for codecs that depend on it and zero otherwise.
type codec interface {
	decode(raw uint32, config uint16, c Calibration) int64
}

// encoder is implemented by codecs of writable quantities.
type encoder interface {
	encode(v int64, c Calibration) (uint16, error)
}

type dieTemp struct{}

func (dieTemp) decode(raw uint32, _ uint16, _ Calibration) int64 {
	return DecodeDieTemp(uint16(raw))
}

type shuntVoltage struct{}

func (shuntVoltage) decode(raw uint32, config uint16, _ Calibration) int64 {
	return DecodeShuntVoltage(uint16(raw), config)
}

type busVoltage struct{}

func (busVoltage) decode(raw uint32, _ uint16, _ Calibration) int64 {
	return DecodeBusVoltage(uint16(raw))
}

func (busVoltage) encode(v int64, _ Calibration) (uint16, error) {
	return EncodeBusVoltage(v)
}

type current struct{}

func (current) decode(raw uint32, _ uint16, c Calibration) int64 {
	return DecodeCurrent(uint16(raw), c)
}

type power struct{}

func (power) decode(raw uint32, _ uint16, c Calibration) int64 {
	return DecodePower(raw, c)
}

type powerLimit struct{}

func (powerLimit) decode(raw uint32, _ uint16, c Calibration) int64 {
	return DecodePowerLimit(uint16(raw), c)
}

func (powerLimit) encode(v int64, c Calibration) (uint16, error) {
	return EncodePowerLimit(v, c)
}

type identity struct{}

func (identity) decode(raw uint32, _ uint16, _ Calibration) int64 {
	return int64(raw)
}

type shuntResistor struct{}

func (shuntResistor) decode(_ uint32, _ uint16, c Calibration) int64 {
	return int64(c.ShuntResistorMicroOhms)
}

var _ encoder = busVoltage{}
var _ encoder = powerLimit{}
