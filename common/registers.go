// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"encoding/binary"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Transport is the register level access used by the drivers. Words are
// returned in host order; the implementation owns the wire byte order.
type Transport interface {
	ReadWord(reg uint8) (uint16, error)
	// ReadBlock reads len(b) bytes starting at reg and returns the number of
	// bytes actually read.
	ReadBlock(reg uint8, b []byte) (int, error)
	WriteWord(reg uint8, v uint16) error
}

// Registers accesses 8 bit addressed registers of an I²C device.
//
// Failures are returned as *TransportError.
type Registers struct {
	// PEC appends and verifies the SMBus packet error code on word
	// transfers.
	PEC bool

	d    mmr.Dev8
	addr uint16
}

// NewRegisters returns a Registers for the device at addr on bus b. order is
// the byte order of 16 bit words on the wire: binary.BigEndian for SMBus
// "swapped" word devices, binary.LittleEndian for PMBus.
func NewRegisters(b i2c.Bus, addr uint16, order binary.ByteOrder) *Registers {
	return &Registers{d: mmr.Dev8{Conn: &i2c.Dev{Bus: b, Addr: addr}, Order: order}, addr: addr}
}

// ReadWord implements Transport.
func (r *Registers) ReadWord(reg uint8) (uint16, error) {
	if r.PEC {
		return r.readWordPEC(reg)
	}
	v, err := r.d.ReadUint16(reg)
	if err != nil {
		return 0, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return v, nil
}

func (r *Registers) readWordPEC(reg uint8) (uint16, error) {
	var b [3]byte
	if err := r.d.Conn.Tx([]byte{reg}, b[:]); err != nil {
		return 0, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	w := byte(r.addr << 1)
	if PEC([]byte{w, reg, w | 1}, b[:2]) != b[2] {
		return 0, &TransportError{Op: "read", Reg: reg, Err: ErrPEC}
	}
	return r.d.Order.Uint16(b[:2]), nil
}

// ReadBlock implements Transport.
func (r *Registers) ReadBlock(reg uint8, b []byte) (int, error) {
	if err := r.d.Conn.Tx([]byte{reg}, b); err != nil {
		return 0, &TransportError{Op: "read block", Reg: reg, Err: err}
	}
	return len(b), nil
}

// WriteWord implements Transport.
func (r *Registers) WriteWord(reg uint8, v uint16) error {
	if r.PEC {
		w := []byte{reg, 0, 0, 0}
		r.d.Order.PutUint16(w[1:3], v)
		w[3] = PEC([]byte{byte(r.addr << 1)}, w[:3])
		if err := r.d.Conn.Tx(w, nil); err != nil {
			return &TransportError{Op: "write", Reg: reg, Err: err}
		}
		return nil
	}
	if err := r.d.WriteUint16(reg, v); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (r *Registers) String() string {
	return r.d.Conn.String()
}

var _ Transport = &Registers{}
