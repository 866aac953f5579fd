// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/GermanBionicSystems/powermon/devprop"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Property names read by OptsFromProperties.
const (
	PropShuntResistor    = "shunt-resistor-uohms"
	PropMaxExpectCurrent = "max-expect-current-ua"
)

// Opts holds the board configuration. Fields are used as given; a zero
// MaxExpectCurrentMicroAmps fails calibration. Use DefaultOpts or
// OptsFromProperties to start from the package defaults.
type Opts struct {
	ShuntResistorMicroOhms    uint32
	MaxExpectCurrentMicroAmps uint32
}

// DefaultOpts is the configuration used when nil Opts are passed.
var DefaultOpts = Opts{
	ShuntResistorMicroOhms:    DefaultShuntResistorMicroOhms,
	MaxExpectCurrentMicroAmps: DefaultMaxExpectCurrentMicroAmps,
}

// OptsFromProperties reads the shunt and expected current properties from
// src. Missing properties keep their defaults.
func OptsFromProperties(src devprop.Source) Opts {
	o := DefaultOpts
	if v, ok := src.Uint32(PropShuntResistor); ok {
		o.ShuntResistorMicroOhms = v
	}
	if v, ok := src.Uint32(PropMaxExpectCurrent); ok {
		o.MaxExpectCurrentMicroAmps = v
	}
	return o
}

// access describes the bus transactions an attribute read needs.
type access int

const (
	readWord       access = iota // one word
	readWordConfig               // one word, then CONFIG
	readPower                    // 3 byte block
	readNone                     // configuration only
)

type attribute struct {
	reg      uint8
	codec    codec
	access   access
	hex      bool
	writable bool
}

// attributeNames lists the attributes in hwmon registration order.
var attributeNames = []string{
	"in0_input",
	"in0_input_max",
	"in0_input_min",
	"in1_input",
	"in1_input_max",
	"in1_input_min",
	"curr1_input",
	"power1_input",
	"power1_max",
	"temp1_input",
	"manufacturer_id",
	"device_id",
	"shunt_resistor",
}

var attributes = map[string]attribute{
	"temp1_input":     {reg: RegDieTemp, codec: dieTemp{}},
	"in0_input":       {reg: RegVShunt, codec: shuntVoltage{}, access: readWordConfig},
	"in0_input_max":   {reg: RegSOVL, codec: shuntVoltage{}, access: readWordConfig},
	"in0_input_min":   {reg: RegSUVL, codec: shuntVoltage{}, access: readWordConfig},
	"in1_input":       {reg: RegVBus, codec: busVoltage{}},
	"in1_input_max":   {reg: RegBOVL, codec: busVoltage{}, writable: true},
	"in1_input_min":   {reg: RegBUVL, codec: busVoltage{}, writable: true},
	"curr1_input":     {reg: RegCurrent, codec: current{}},
	"power1_input":    {reg: RegPower, codec: power{}, access: readPower},
	"power1_max":      {reg: RegPwrLimit, codec: powerLimit{}, writable: true},
	"manufacturer_id": {reg: RegManufacturerID, codec: identity{}, hex: true},
	"device_id":       {reg: RegDeviceID, codec: identity{}, hex: true},
	"shunt_resistor":  {codec: shuntResistor{}, access: readNone},
}

// PowerMonitor is a set of measurements in physical units.
type PowerMonitor struct {
	Shunt       physic.ElectricPotential
	Voltage     physic.ElectricPotential
	Current     physic.ElectricCurrent
	Power       physic.Power
	Temperature physic.Temperature
}

func (p PowerMonitor) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Voltage, p.Current, p.Power, p.Temperature)
}

// Dev is a handle to an INA237.
type Dev struct {
	r   common.Transport
	mu  sync.Mutex
	cal Calibration
}

// NewI2C returns a Dev for the INA237 at addr on bus b and programs its
// calibration register. If opts is nil DefaultOpts are used.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	return New(common.NewRegisters(b, addr, binary.BigEndian), opts)
}

// New returns a Dev using the register transport r, which must deliver words
// in host order.
func New(r common.Transport, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	d := &Dev{
		r: r,
		cal: Calibration{
			ShuntResistorMicroOhms:    o.ShuntResistorMicroOhms,
			MaxExpectCurrentMicroAmps: o.MaxExpectCurrentMicroAmps,
		},
	}
	reg, err := d.cal.Register()
	if err != nil {
		return nil, err
	}
	if err = d.r.WriteWord(RegCurrLSBCalc, reg); err != nil {
		return nil, fmt.Errorf("ina237: calibration: %w", err)
	}
	return d, nil
}

// Calibration returns the parameters the device was constructed with.
func (d *Dev) Calibration() Calibration {
	return d.cal
}

// Attributes returns the names accepted by Show.
func (d *Dev) Attributes() []string {
	return append([]string(nil), attributeNames...)
}

// Writable reports whether Store changes the device for name.
func (d *Dev) Writable(name string) bool {
	return attributes[name].writable
}

// Show returns the attribute name formatted as hwmon does: decimal, or
// 0x%04X for the identification registers.
func (d *Dev) Show(name string) (string, error) {
	a, ok := attributes[name]
	if !ok {
		return "", fmt.Errorf("ina237: unknown attribute %q: %w", name, common.ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readLocked(a)
	if err != nil {
		return "", fmt.Errorf("ina237: %s: %w", name, err)
	}
	if a.hex {
		return fmt.Sprintf("0x%04X", v), nil
	}
	return strconv.FormatInt(v, 10), nil
}

// Store parses value as a base 10 integer and writes it to the attribute
// name. Only in1_input_max, in1_input_min and power1_max change the device;
// storing any other known attribute succeeds without bus access.
func (d *Dev) Store(name, value string) error {
	a, ok := attributes[name]
	if !ok {
		return fmt.Errorf("ina237: unknown attribute %q: %w", name, common.ErrInvalidArgument)
	}
	s := strings.TrimSpace(value)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &common.ParseError{Name: "ina237: " + name, Input: value, Err: err}
	}
	if !a.writable {
		return nil
	}
	return d.write(a, v)
}

func (d *Dev) write(a attribute, v int64) error {
	reg, err := a.codec.(encoder).encode(v, d.cal)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.r.WriteWord(a.reg, reg); err != nil {
		return fmt.Errorf("ina237: %w", err)
	}
	return nil
}

// readLocked performs the bus reads of a and decodes the result.
func (d *Dev) readLocked(a attribute) (int64, error) {
	var raw uint32
	var config uint16
	switch a.access {
	case readWord, readWordConfig:
		w, err := d.r.ReadWord(a.reg)
		if err != nil {
			return 0, err
		}
		raw = uint32(w)
		if a.access == readWordConfig {
			if config, err = d.r.ReadWord(RegConfig); err != nil {
				return 0, err
			}
		}
	case readPower:
		b := make([]byte, 3)
		n, err := d.r.ReadBlock(a.reg, b)
		if err != nil {
			return 0, err
		}
		if n != len(b) {
			return 0, &common.TransportError{Op: "read block", Reg: a.reg, Err: common.ErrShortRead}
		}
		raw, _ = PowerWord(b)
	case readNone:
	}
	return a.codec.decode(raw, config, d.cal), nil
}

func (d *Dev) value(name string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.readLocked(attributes[name])
	if err != nil {
		return 0, fmt.Errorf("ina237: %s: %w", name, err)
	}
	return v, nil
}

// BusVoltage returns the bus voltage.
func (d *Dev) BusVoltage() (physic.ElectricPotential, error) {
	v, err := d.value("in1_input")
	return physic.ElectricPotential(v) * physic.MilliVolt, err
}

// ShuntVoltage returns the voltage across the shunt resistor.
func (d *Dev) ShuntVoltage() (physic.ElectricPotential, error) {
	v, err := d.value("in0_input")
	return physic.ElectricPotential(v) * physic.MicroVolt, err
}

// Current returns the calibrated current.
func (d *Dev) Current() (physic.ElectricCurrent, error) {
	v, err := d.value("curr1_input")
	return physic.ElectricCurrent(v) * physic.MilliAmpere, err
}

// Power returns the calibrated power, with a resolution of 1W.
func (d *Dev) Power() (physic.Power, error) {
	v, err := d.value("power1_input")
	return physic.Power(v) * physic.Watt, err
}

// DieTemperature returns the die temperature.
func (d *Dev) DieTemperature() (physic.Temperature, error) {
	v, err := d.value("temp1_input")
	return physic.ZeroCelsius + physic.Temperature(v)*physic.MilliKelvin, err
}

// Read returns all measurements.
func (d *Dev) Read() (PowerMonitor, error) {
	var p PowerMonitor
	var err error
	if p.Shunt, err = d.ShuntVoltage(); err != nil {
		return p, err
	}
	if p.Voltage, err = d.BusVoltage(); err != nil {
		return p, err
	}
	if p.Current, err = d.Current(); err != nil {
		return p, err
	}
	if p.Power, err = d.Power(); err != nil {
		return p, err
	}
	p.Temperature, err = d.DieTemperature()
	return p, err
}

// SetBusVoltageLimits programs the bus under and over voltage thresholds.
func (d *Dev) SetBusVoltageLimits(low, high physic.ElectricPotential) error {
	if low > high {
		return fmt.Errorf("ina237: bus voltage limits %s > %s: %w", low, high, common.ErrInvalidArgument)
	}
	if err := d.write(attributes["in1_input_min"], int64(low/physic.MilliVolt)); err != nil {
		return err
	}
	return d.write(attributes["in1_input_max"], int64(high/physic.MilliVolt))
}

// SetPowerLimit programs the power over limit threshold, in whole watts.
func (d *Dev) SetPowerLimit(p physic.Power) error {
	return d.write(attributes["power1_max"], int64(p/physic.Watt))
}

// Snapshot returns every attribute formatted by Show.
func (d *Dev) Snapshot() (map[string]string, error) {
	m := make(map[string]string, len(attributeNames))
	for _, name := range attributeNames {
		s, err := d.Show(name)
		if err != nil {
			return nil, err
		}
		m[name] = s
	}
	return m, nil
}

// Halt implements conn.Resource. The INA237 keeps converting; there is
// nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ina237: %v", d.r)
}

var _ conn.Resource = &Dev{}
