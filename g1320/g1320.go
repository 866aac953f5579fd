// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g1320

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/GermanBionicSystems/powermon/devprop"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Property names read by OptsFromProperties.
const (
	// PropUnit holds the PSU slot index.
	PropUnit = "g1320,unit"
	// PropPEC enables packet error checking when non zero.
	PropPEC = "g1320,pec"
)

// Descriptor describes a PSU slot.
type Descriptor struct {
	Name string
	Type string
}

// Descriptors lists the PSU slots a Dev can bind to, indexed by unit.
var Descriptors = [...]Descriptor{
	{Name: "g1320-psu0", Type: "Mains"},
	{Name: "g1320-psu1", Type: "Mains"},
}

// Opts selects the PSU slot. The slot is always given by the caller; nothing
// is assigned implicitly.
type Opts struct {
	Unit uint32
	// PEC enables SMBus packet error checking on word reads. Only used by
	// NewI2C.
	PEC bool
}

// OptsFromProperties reads the unit and PEC properties from src and reports
// whether the unit was set.
func OptsFromProperties(src devprop.Source) (Opts, bool) {
	v, ok := src.Uint32(PropUnit)
	o := Opts{Unit: v}
	if pec, found := src.Uint32(PropPEC); found {
		o.PEC = pec != 0
	}
	return o, ok
}

// properties lists the supported properties in registration order.
var properties = []Property{Temp, CurrentNow, PowerNow, FanSpeed, VoltageNow, Present}

// linearRegs maps the linear11 properties to their register.
var linearRegs = map[Property]uint8{
	CurrentNow: RegReadIout,
	PowerNow:   RegReadPout,
	Temp:       RegReadTemp1,
	FanSpeed:   RegFanSpeed1,
}

// Reading is a set of PSU measurements in physical units.
type Reading struct {
	Temperature physic.Temperature
	Current     physic.ElectricCurrent
	Power       physic.Power
	FanSpeed    int64 // RPM
	Voltage     physic.ElectricPotential
	Present     bool
}

func (r Reading) String() string {
	return fmt.Sprintf("%s %s %s %s %dRPM present=%t", r.Voltage, r.Current, r.Power, r.Temperature, r.FanSpeed, r.Present)
}

// Dev is a handle to one G1320 PSU.
type Dev struct {
	r    common.Transport
	mu   sync.Mutex
	unit uint32
}

// NewI2C returns a Dev for the PSU at addr on bus b. PMBus words are little
// endian on the wire. If opts is nil the PSU binds to unit 0.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	r := common.NewRegisters(b, addr, binary.LittleEndian)
	if opts != nil {
		r.PEC = opts.PEC
	}
	return New(r, opts)
}

// New returns a Dev using the register transport r.
func New(r common.Transport, opts *Opts) (*Dev, error) {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if int(o.Unit) >= len(Descriptors) {
		return nil, fmt.Errorf("g1320: unit %d: %w", o.Unit, common.ErrInvalidArgument)
	}
	return &Dev{r: r, unit: o.Unit}, nil
}

// Unit returns the PSU slot index.
func (d *Dev) Unit() uint32 {
	return d.unit
}

// Descriptor returns the descriptor of the PSU slot.
func (d *Dev) Descriptor() Descriptor {
	return Descriptors[d.unit]
}

// Name returns the descriptor name, e.g. "g1320-psu0".
func (d *Dev) Name() string {
	return Descriptors[d.unit].Name
}

// Properties returns the properties accepted by Property.
func (d *Dev) Properties() []Property {
	return append([]Property(nil), properties...)
}

// Property reads and decodes p. Present returns 1 or 0. Bus errors are
// returned as is.
func (d *Dev) Property(p Property) (int64, error) {
	switch p {
	case Temp, CurrentNow, PowerNow, FanSpeed, VoltageNow, Present:
	default:
		return 0, fmt.Errorf("g1320: property %s: %w", p, common.ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.propertyLocked(p)
}

func (d *Dev) propertyLocked(p Property) (int64, error) {
	switch p {
	case VoltageNow:
		raw, err := d.r.ReadWord(RegReadVout)
		if err != nil {
			return 0, err
		}
		return DecodeVout(raw), nil
	case Present:
		raw, err := d.r.ReadWord(RegVoutMode)
		if err != nil {
			return 0, err
		}
		if IsPresent(raw) {
			return 1, nil
		}
		return 0, nil
	default:
		raw, err := d.r.ReadWord(linearRegs[p])
		if err != nil {
			return 0, err
		}
		return DecodeLinear(raw, p)
	}
}

// IsPresent reports whether the slot holds a PSU.
func (d *Dev) IsPresent() (bool, error) {
	v, err := d.Property(Present)
	return v == 1, err
}

// Read returns all measurements.
func (d *Dev) Read() (Reading, error) {
	var r Reading
	d.mu.Lock()
	defer d.mu.Unlock()
	var v [len(propertyNames)]int64
	for _, p := range properties {
		x, err := d.propertyLocked(p)
		if err != nil {
			return r, fmt.Errorf("g1320: %s: %w", p, err)
		}
		v[p] = x
	}
	r.Temperature = physic.ZeroCelsius + physic.Temperature(v[Temp])*physic.Kelvin
	r.Current = physic.ElectricCurrent(v[CurrentNow]) * physic.MilliAmpere
	r.Power = physic.Power(v[PowerNow]) * physic.Watt
	r.FanSpeed = v[FanSpeed]
	r.Voltage = physic.ElectricPotential(v[VoltageNow]) * physic.Volt
	r.Present = v[Present] == 1
	return r, nil
}

// ManufacturerID returns the MFR_ID string, read as a PMBus block.
func (d *Dev) ManufacturerID() (string, error) {
	b := make([]byte, 33)
	d.mu.Lock()
	n, err := d.r.ReadBlock(RegMfrID, b)
	d.mu.Unlock()
	if err != nil {
		return "", err
	}
	if n < 1 || int(b[0]) > n-1 {
		return "", &common.TransportError{Op: "read block", Reg: RegMfrID, Err: common.ErrShortRead}
	}
	return string(b[1 : 1+int(b[0])]), nil
}

// Snapshot returns every property as a decimal string keyed by its name.
func (d *Dev) Snapshot() (map[string]string, error) {
	m := make(map[string]string, len(properties))
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range properties {
		v, err := d.propertyLocked(p)
		if err != nil {
			return nil, fmt.Errorf("g1320: %s: %w", p, err)
		}
		m[p.String()] = strconv.FormatInt(v, 10)
	}
	return m, nil
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s: %v", d.Name(), d.r)
}

var _ conn.Resource = &Dev{}
