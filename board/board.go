// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board reads the YAML description of the power monitoring devices
// fitted on a board and opens their drivers.
//
// Example:
//
//	devicetree: /sys/firmware/fdt
//	redis: 127.0.0.1:6379
//	interval: 5s
//	devices:
//	  - name: vdd-core
//	    driver: ina237
//	    bus: "1"
//	    addr: 0x40
//	    properties:
//	      shunt-resistor-uohms: 5000
//	  - name: psu0
//	    driver: g1320
//	    bus: "1"
//	    addr: 0x58
//	    properties:
//	      g1320,unit: 0
package board

import (
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/powermon/common"
	"github.com/GermanBionicSystems/powermon/devprop"
	"github.com/GermanBionicSystems/powermon/g1320"
	"github.com/GermanBionicSystems/powermon/ina237"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

// Supported drivers.
const (
	DriverINA237 = "ina237"
	DriverG1320  = "g1320"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Config is a board description.
type Config struct {
	// DeviceTree is the path of a flattened device tree blob. Devices naming
	// a node read their properties from it.
	DeviceTree string        `yaml:"devicetree"`
	Redis      string        `yaml:"redis"`
	Interval   time.Duration `yaml:"interval"`
	Devices    []Device      `yaml:"devices"`
}

// Device is one monitored chip.
type Device struct {
	Name   string `yaml:"name"`
	Driver string `yaml:"driver"`
	// Bus is passed to i2creg.Open; empty selects the default bus.
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`
	// Node is the device tree node name, e.g. "ina237@40".
	Node       string            `yaml:"node"`
	Properties map[string]uint32 `yaml:"properties"`
}

// Sensor is an opened driver.
type Sensor interface {
	conn.Resource
	Snapshot() (map[string]string, error)
}

// Load reads and parses the board description at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a board description.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < 0 {
		return nil, fmt.Errorf("board: interval %s: %w", c.Interval, common.ErrInvalidArgument)
	}
	seen := map[string]bool{}
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.Name == "" {
			return nil, fmt.Errorf("board: device %d has no name: %w", i, common.ErrInvalidArgument)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("board: duplicate device %q: %w", d.Name, common.ErrInvalidArgument)
		}
		seen[d.Name] = true
		switch d.Driver {
		case DriverINA237:
			if d.Addr == 0 {
				d.Addr = ina237.DefaultAddress
			}
		case DriverG1320:
			if d.Addr == 0 {
				return nil, fmt.Errorf("board: %s: missing address: %w", d.Name, common.ErrInvalidArgument)
			}
		default:
			return nil, fmt.Errorf("board: %s: unknown driver %q: %w", d.Name, d.Driver, common.ErrInvalidArgument)
		}
		if d.Addr > 0x7f {
			return nil, fmt.Errorf("board: %s: address 0x%x: %w", d.Name, d.Addr, common.ErrRange)
		}
	}
	return c, nil
}

// Source returns the properties of d. Values listed in the board description
// take precedence over the device tree node. blob may be nil when d names no
// node.
func (d *Device) Source(blob []byte) (devprop.Source, error) {
	src := devprop.Chain{devprop.Map(d.Properties)}
	if d.Node == "" {
		return src, nil
	}
	n, err := devprop.Lookup(blob, d.Node)
	if err != nil {
		return nil, fmt.Errorf("board: %s: %w", d.Name, err)
	}
	return append(src, devprop.Node{N: n}), nil
}

// Open binds the driver of d on bus b.
func (d *Device) Open(b i2c.Bus, src devprop.Source) (Sensor, error) {
	switch d.Driver {
	case DriverINA237:
		o := ina237.OptsFromProperties(src)
		dev, err := ina237.NewI2C(b, d.Addr, &o)
		if err != nil {
			return nil, fmt.Errorf("board: %s: %w", d.Name, err)
		}
		return dev, nil
	case DriverG1320:
		o, ok := g1320.OptsFromProperties(src)
		if !ok {
			return nil, fmt.Errorf("board: %s: %s not set: %w", d.Name, g1320.PropUnit, common.ErrInvalidArgument)
		}
		dev, err := g1320.NewI2C(b, d.Addr, &o)
		if err != nil {
			return nil, fmt.Errorf("board: %s: %w", d.Name, err)
		}
		return dev, nil
	}
	return nil, fmt.Errorf("board: %s: unknown driver %q: %w", d.Name, d.Driver, common.ErrInvalidArgument)
}

// Buses returns the distinct bus names used by the devices, in order of first
// use.
func (c *Config) Buses() []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range c.Devices {
		if !seen[d.Bus] {
			seen[d.Bus] = true
			out = append(out, d.Bus)
		}
	}
	return out
}
