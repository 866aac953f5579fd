// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestPEC(t *testing.T) {
	var tests = []struct {
		bytes  [][]byte
		result byte
	}{
		{bytes: nil, result: 0x00},
		{bytes: [][]byte{[]byte("123456789")}, result: 0xf4},
		{bytes: [][]byte{[]byte("1234"), []byte("56789")}, result: 0xf4},
		{bytes: [][]byte{{0x01}}, result: 0x07},
		{bytes: [][]byte{{0xff}}, result: 0xf3},
	}
	for _, test := range tests {
		res := PEC(test.bytes...)
		if res != test.result {
			t.Errorf("PEC(%#v)!=0x%02x received 0x%02x", test.bytes, test.result, res)
		}
	}
}
