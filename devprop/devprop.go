// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devprop provides the configuration properties drivers read at
// construction, such as "shunt-resistor-uohms".
//
// Properties come from a plain map, from a flattened device tree node or
// from a chain of both.
package devprop

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/platinasystems/fdt"
)

// Source returns the value of a numeric property and whether it is set.
type Source interface {
	Uint32(key string) (uint32, bool)
}

// Map is a Source backed by a map.
type Map map[string]uint32

// Uint32 implements Source.
func (m Map) Uint32(key string) (uint32, bool) {
	v, ok := m[key]
	return v, ok
}

// Chain returns the value from the first Source that has the key.
type Chain []Source

// Uint32 implements Source.
func (c Chain) Uint32(key string) (uint32, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Uint32(key); ok {
			return v, true
		}
	}
	return 0, false
}

// Node is a Source reading the properties of a device tree node. Values are
// the first big endian cell of the property.
type Node struct {
	N *fdt.Node
}

// Uint32 implements Source.
func (n Node) Uint32(key string) (uint32, bool) {
	if n.N == nil {
		return 0, false
	}
	b, ok := n.N.Properties[key]
	if !ok || len(b) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(b[:4]), true
}

// ErrNodeNotFound is returned by FindNode and Lookup.
var ErrNodeNotFound = errors.New("devprop: node not found")

// ErrBadDeviceTree is returned by Lookup for a blob that is not a well formed
// flattened device tree.
var ErrBadDeviceTree = errors.New("devprop: malformed device tree")

const (
	fdtMagic     = 0xd00dfeed
	fdtHeaderLen = 40
)

// Lookup parses a flattened device tree blob and returns the node named
// name, for example "ina237@40".
func Lookup(blob []byte, name string) (n *fdt.Node, err error) {
	if len(blob) < fdtHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadDeviceTree, len(blob))
	}
	if m := binary.BigEndian.Uint32(blob); m != fdtMagic {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrBadDeviceTree, m)
	}
	if size := binary.BigEndian.Uint32(blob[4:]); size > uint32(len(blob)) {
		return nil, fmt.Errorf("%w: total size %d exceeds %d bytes", ErrBadDeviceTree, size, len(blob))
	}
	// fdt indexes the blob without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			n = nil
			err = fmt.Errorf("%w: %v", ErrBadDeviceTree, r)
		}
	}()
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	if err := t.Parse(blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDeviceTree, err)
	}
	if t.RootNode == nil {
		return nil, fmt.Errorf("%w: no root node", ErrBadDeviceTree)
	}
	var found *fdt.Node
	t.MatchNode(name, func(n *fdt.Node) {
		if found == nil {
			found = n
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return found, nil
}

// FindNode searches the in-memory tree below root for the node named name, for
// example "ina237@40".
func FindNode(root *fdt.Node, name string) (*fdt.Node, error) {
	if n := find(root, name); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
}

func find(n *fdt.Node, name string) *fdt.Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := find(c, name); f != nil {
			return f
		}
	}
	return nil
}

var _ Source = Map{}
var _ Source = Chain{}
var _ Source = Node{}
