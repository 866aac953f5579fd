// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g1320

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/powermon/common"
)

// Property is a quantity reported by the PSU.
type Property int

const (
	Temp Property = iota
	CurrentNow
	PowerNow
	FanSpeed
	VoltageNow
	Present
)

var propertyNames = [...]string{"TEMP", "CURRENT_NOW", "POWER_NOW", "FAN_SPEED", "VOLTAGE_NOW", "PRESENT"}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyNames) {
		return fmt.Sprintf("Property(%d)", int(p))
	}
	return propertyNames[p]
}

// ParseProperty returns the Property named s, ignoring case.
func ParseProperty(s string) (Property, error) {
	for i, n := range propertyNames {
		if strings.EqualFold(n, s) {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("g1320: unknown property %q: %w", s, common.ErrInvalidArgument)
}

const (
	linearMantissaBits = 11
	linearExponentBits = 5
	linearMantissaSign = 1 << (linearMantissaBits - 1)
	linearExponentSign = 1 << (linearExponentBits - 1)

	// Largest exponent magnitude the scale table covers.
	maxExponent = 14

	// VOUT has 9 fractional bits.
	voutDivisor = 512
)

// twoExp holds 2^i for the supported exponent magnitudes.
var twoExp = [maxExponent + 1]int64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384}

// DecodeLinear converts a linear11 register: mantissa * 2^exponent, times
// 1000 for CurrentNow so it is returned in mA. Negative exponents divide and
// truncate toward zero.
func DecodeLinear(raw uint16, p Property) (int64, error) {
	mant := int64(raw & (1<<linearMantissaBits - 1))
	exp := int64(raw >> linearMantissaBits)
	if mant&linearMantissaSign != 0 {
		mant = common.ToSigned(uint32(mant), linearMantissaBits)
	}
	scale := int64(1)
	if p == CurrentNow {
		scale = 1000
	}
	if exp&linearExponentSign != 0 {
		exp = common.ToSigned(uint32(exp), linearExponentBits)
		if -exp > maxExponent {
			return 0, fmt.Errorf("g1320: linear exponent %d: %w", exp, common.ErrRange)
		}
		return mant * scale / twoExp[-exp], nil
	}
	if exp > maxExponent {
		return 0, fmt.Errorf("g1320: linear exponent %d: %w", exp, common.ErrRange)
	}
	return mant * scale * twoExp[exp], nil
}

// EncodeLinear builds a linear11 register from its fields. It is the
// inverse of the field split done by DecodeLinear.
func EncodeLinear(mantissa, exponent int) (uint16, error) {
	if mantissa < -linearMantissaSign || mantissa >= linearMantissaSign {
		return 0, fmt.Errorf("g1320: linear mantissa %d: %w", mantissa, common.ErrRange)
	}
	if exponent < -linearExponentSign || exponent >= linearExponentSign {
		return 0, fmt.Errorf("g1320: linear exponent %d: %w", exponent, common.ErrRange)
	}
	m := uint16(mantissa) & (1<<linearMantissaBits - 1)
	e := uint16(exponent) & (1<<linearExponentBits - 1)
	return e<<linearMantissaBits | m, nil
}

// DecodeVout converts READ_VOUT to V.
func DecodeVout(raw uint16) int64 {
	return int64(raw) / voutDivisor
}

// IsPresent reports whether the VOUT_MODE register identifies a populated
// PSU slot.
func IsPresent(voutMode uint16) bool {
	return voutMode&0xff == voutModePresent
}
