// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for an unknown attribute, property or
	// register index. No bus access is made.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRange is returned when a value does not fit the register encoding
	// it is converted to or from.
	ErrRange = errors.New("value out of range")
	// ErrShortRead is wrapped in a TransportError when a block read returns
	// fewer bytes than requested.
	ErrShortRead = errors.New("short read")
	// ErrPEC is wrapped in a TransportError when the packet error code of a
	// transfer does not match.
	ErrPEC = errors.New("packet error code mismatch")
)

// TransportError reports a failed bus transaction.
type TransportError struct {
	Op  string
	Reg uint8
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports textual input that is not a base 10 integer.
type ParseError struct {
	Name  string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %v", e.Name, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
