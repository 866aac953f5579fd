// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package devprop

import (
	"errors"
	"testing"

	"github.com/platinasystems/fdt"
)

func cell(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func testTree() *fdt.Node {
	ina := &fdt.Node{
		Name:  "ina237@40",
		Depth: 2,
		Properties: map[string][]byte{
			"compatible":            []byte("ti,ina237\x00"),
			"shunt-resistor-uohms":  cell(5000),
			"max-expect-current-ua": cell(8000000),
			"short":                 {0x01},
		},
		Children: map[string]*fdt.Node{},
	}
	i2c := &fdt.Node{
		Name:       "i2c@fd880000",
		Depth:      1,
		Properties: map[string][]byte{},
		Children:   map[string]*fdt.Node{ina.Name: ina},
	}
	return &fdt.Node{
		Name:       "/",
		Properties: map[string][]byte{},
		Children:   map[string]*fdt.Node{i2c.Name: i2c},
	}
}

func TestMap(t *testing.T) {
	m := Map{"g1320,unit": 1}
	if v, ok := m.Uint32("g1320,unit"); !ok || v != 1 {
		t.Errorf("Uint32()=%d, %t", v, ok)
	}
	if _, ok := m.Uint32("missing"); ok {
		t.Error("missing key reported as set")
	}
}

func TestNode(t *testing.T) {
	n, err := FindNode(testTree(), "ina237@40")
	if err != nil {
		t.Fatal(err)
	}
	src := Node{N: n}
	if v, ok := src.Uint32("shunt-resistor-uohms"); !ok || v != 5000 {
		t.Errorf("shunt-resistor-uohms=%d, %t", v, ok)
	}
	if v, ok := src.Uint32("max-expect-current-ua"); !ok || v != 8000000 {
		t.Errorf("max-expect-current-ua=%d, %t", v, ok)
	}
	if _, ok := src.Uint32("short"); ok {
		t.Error("truncated property reported as set")
	}
	if _, ok := (Node{}).Uint32("short"); ok {
		t.Error("nil node reported a property")
	}
}

func TestFindNodeMissing(t *testing.T) {
	if _, err := FindNode(testTree(), "g1320-psu@58"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestChain(t *testing.T) {
	n, err := FindNode(testTree(), "ina237@40")
	if err != nil {
		t.Fatal(err)
	}
	c := Chain{Map{"shunt-resistor-uohms": 1000}, nil, Node{N: n}}
	if v, _ := c.Uint32("shunt-resistor-uohms"); v != 1000 {
		t.Errorf("override not honored, got %d", v)
	}
	if v, _ := c.Uint32("max-expect-current-ua"); v != 8000000 {
		t.Errorf("fallback not honored, got %d", v)
	}
	if _, ok := c.Uint32("g1320,unit"); ok {
		t.Error("missing key reported as set")
	}
}

func testBlob() []byte {
	return (&fdt.Tree{RootNode: testTree()}).FlattenTreeToSlice()
}

func TestLookup(t *testing.T) {
	n, err := Lookup(testBlob(), "ina237@40")
	if err != nil {
		t.Fatal(err)
	}
	src := Node{N: n}
	if v, ok := src.Uint32("shunt-resistor-uohms"); !ok || v != 5000 {
		t.Errorf("shunt-resistor-uohms=%d, %t", v, ok)
	}
	if _, ok := src.Uint32("short"); ok {
		t.Error("truncated property reported as set")
	}
	if _, err = Lookup(testBlob(), "g1320-psu@58"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestLookupMalformed(t *testing.T) {
	cells := func(v ...uint32) []byte {
		var b []byte
		for _, c := range v {
			b = append(b, cell(c)...)
		}
		return b
	}
	// Header claiming 52 bytes, structure at 40: a root node that is never
	// closed.
	unbalanced := cells(0xd00dfeed, 52, 40, 52, 40, 17, 16, 0, 0, 12)
	unbalanced = append(unbalanced, cells(1, 0, 9)...)

	// Strings block offset far past the end of the blob.
	badStrings := testBlob()
	copy(badStrings[12:], cell(0xffffff00))

	// Structure block offset past the end of the blob.
	badStruct := testBlob()
	copy(badStruct[8:], cell(0x7ffffff0))

	truncated := testBlob()
	truncated = truncated[:len(truncated)-8]

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"short", []byte{0xd0, 0x0d, 0xfe, 0xed}},
		{"text", []byte("not a device tree, just a long enough line of text")},
		{"truncated", truncated},
		{"unbalanced", unbalanced},
		{"strings offset", badStrings},
		{"struct offset", badStruct},
	}
	for _, test := range tests {
		n, err := Lookup(test.blob, "ina237@40")
		if !errors.Is(err, ErrBadDeviceTree) {
			t.Errorf("%s: expected ErrBadDeviceTree, got %v", test.name, err)
		}
		if n != nil {
			t.Errorf("%s: unexpected node %v", test.name, n)
		}
	}
}
