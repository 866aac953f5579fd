// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"errors"
	"math"
	"testing"

	"github.com/GermanBionicSystems/powermon/common"
)

var defaultCal = Calibration{
	ShuntResistorMicroOhms:    DefaultShuntResistorMicroOhms,
	MaxExpectCurrentMicroAmps: DefaultMaxExpectCurrentMicroAmps,
}

func TestCalibration(t *testing.T) {
	if lsb := defaultCal.CurrentLSB(); lsb != 488 {
		t.Errorf("CurrentLSB()=%d expected 488", lsb)
	}
	if lsb := defaultCal.PowerLSB(); lsb != 98 {
		t.Errorf("PowerLSB()=%d expected 98", lsb)
	}
	if lsb := defaultCal.PowerLimitLSB(); lsb != 24986 {
		t.Errorf("PowerLimitLSB()=%d expected 24986", lsb)
	}

	tests := []struct {
		cal      Calibration
		expected uint16
	}{
		{defaultCal, 0x0320},
		{Calibration{ShuntResistorMicroOhms: 5000, MaxExpectCurrentMicroAmps: 8000000}, 1000},
		{Calibration{ShuntResistorMicroOhms: 100000, MaxExpectCurrentMicroAmps: 16000000}, 40000},
	}
	for _, test := range tests {
		reg, err := test.cal.Register()
		if err != nil {
			t.Errorf("%+v: %v", test.cal, err)
			continue
		}
		if reg != test.expected {
			t.Errorf("%+v: Register()=%d expected %d", test.cal, reg, test.expected)
		}
	}
}

func TestCalibrationRange(t *testing.T) {
	bad := []Calibration{
		{ShuntResistorMicroOhms: 200000, MaxExpectCurrentMicroAmps: 16000000},
		{ShuntResistorMicroOhms: 2000, MaxExpectCurrentMicroAmps: 10000},
	}
	for _, cal := range bad {
		if _, err := cal.Register(); !errors.Is(err, common.ErrRange) {
			t.Errorf("%+v: expected ErrRange, got %v", cal, err)
		}
	}
}

func TestDecodeBusVoltage(t *testing.T) {
	tests := []struct {
		raw      uint16
		expected int64
	}{
		{0x0000, 0},
		{0x0001, 3},
		{0xffff, -3},
		{0x3200, 40000},
		{0x7fff, 102397},
		{0x8000, -102400},
	}
	for _, test := range tests {
		if v := DecodeBusVoltage(test.raw); v != test.expected {
			t.Errorf("DecodeBusVoltage(0x%04x)=%d expected %d", test.raw, v, test.expected)
		}
	}
}

func TestEncodeBusVoltage(t *testing.T) {
	tests := []struct {
		mv       int64
		expected uint16
	}{
		{40000, 0x3200},
		{0, 0},
		{3, 0x0001},
		{-3, 0xffff},
		{12000, 3840},
	}
	for _, test := range tests {
		reg, err := EncodeBusVoltage(test.mv)
		if err != nil {
			t.Errorf("EncodeBusVoltage(%d): %v", test.mv, err)
			continue
		}
		if reg != test.expected {
			t.Errorf("EncodeBusVoltage(%d)=0x%04x expected 0x%04x", test.mv, reg, test.expected)
		}
		if (test.mv*1000)%busLSB == 0 {
			if back := DecodeBusVoltage(reg); back != test.mv {
				t.Errorf("round trip of %d gave %d", test.mv, back)
			}
		}
	}
	for _, mv := range []int64{200000, -200000, 18446744073709552, math.MaxInt64, math.MinInt64} {
		if _, err := EncodeBusVoltage(mv); !errors.Is(err, common.ErrRange) {
			t.Errorf("EncodeBusVoltage(%d): expected ErrRange, got %v", mv, err)
		}
	}
}

func TestDecodeShuntVoltage(t *testing.T) {
	tests := []struct {
		raw, config uint16
		expected    int64
	}{
		{0x0002, 0x0000, 10},
		{0x0002, 0x0008, 3},
		{0xfffe, 0x0000, -10},
		{0xfffe, 0x0008, -3},
		{0x0001, 0x0008, 1},
		// Only bit 3 selects the range.
		{0x0002, 0xfff7, 10},
	}
	for _, test := range tests {
		if v := DecodeShuntVoltage(test.raw, test.config); v != test.expected {
			t.Errorf("DecodeShuntVoltage(0x%04x, 0x%04x)=%d expected %d", test.raw, test.config, v, test.expected)
		}
	}
}

func TestDecodeDieTemp(t *testing.T) {
	tests := []struct {
		raw      uint16
		expected int64
	}{
		{0x0000, 0},
		{0x1900, 50000},
		{0x000f, 0},
		{0x0010, 125},
	}
	for _, test := range tests {
		if v := DecodeDieTemp(test.raw); v != test.expected {
			t.Errorf("DecodeDieTemp(0x%04x)=%d expected %d", test.raw, v, test.expected)
		}
	}
}

func TestDecodeCurrent(t *testing.T) {
	tests := []struct {
		raw      uint16
		expected int64
	}{
		{100, 49},
		{0xff9c, -49},
		{0, 0},
		{0x7fff, 15990},
	}
	for _, test := range tests {
		if v := DecodeCurrent(test.raw, defaultCal); v != test.expected {
			t.Errorf("DecodeCurrent(0x%04x)=%d expected %d", test.raw, v, test.expected)
		}
	}
}

func TestPower(t *testing.T) {
	tests := []struct {
		bytes    []byte
		raw      uint32
		expected int64
	}{
		{[]byte{0x00, 0x27, 0x10}, 10000, 1},
		{[]byte{0x01, 0x00, 0x00}, 65536, 6},
		{[]byte{0x00, 0x00, 0x00}, 0, 0},
	}
	for _, test := range tests {
		raw, err := PowerWord(test.bytes)
		if err != nil {
			t.Fatal(err)
		}
		if raw != test.raw {
			t.Errorf("PowerWord(%v)=%d expected %d", test.bytes, raw, test.raw)
		}
		if v := DecodePower(raw, defaultCal); v != test.expected {
			t.Errorf("DecodePower(%d)=%d expected %d", raw, v, test.expected)
		}
	}
	if _, err := PowerWord([]byte{0x01, 0x02}); !errors.Is(err, common.ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
}

func TestPowerLimit(t *testing.T) {
	if v := DecodePowerLimit(0x0100, defaultCal); v != 6 {
		t.Errorf("DecodePowerLimit(0x0100)=%d expected 6", v)
	}
	reg, err := EncodePowerLimit(6, defaultCal)
	if err != nil {
		t.Fatal(err)
	}
	if reg != 240 {
		t.Errorf("EncodePowerLimit(6)=%d expected 240", reg)
	}
	if v := DecodePowerLimit(reg, defaultCal); v != 6 {
		t.Errorf("round trip gave %d", v)
	}
	if _, err := EncodePowerLimit(-1, defaultCal); !errors.Is(err, common.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	for _, w := range []int64{2000, 18446744073710, math.MaxInt64, math.MinInt64} {
		if _, err := EncodePowerLimit(w, defaultCal); !errors.Is(err, common.ErrRange) {
			t.Errorf("EncodePowerLimit(%d): expected ErrRange, got %v", w, err)
		}
	}
}
