// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestCRC16(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result uint16
	}{
		{bytes: nil, result: 0xffff},
		{bytes: []byte("123456789"), result: 0x44c2},
		{bytes: []byte{0x0f, 0x00, 0x00}, result: 0xfccf},
		{bytes: []byte{0xaa, 0x00, 0x00, 0x3f, 0x11, 0x11, 0x11, 0x11}, result: 0x98f8},
	}
	for _, test := range tests {
		res := CRC16(test.bytes)
		if res != test.result {
			t.Errorf("CRC16(%#v)!=0x%04x received 0x%04x", test.bytes, test.result, res)
		}
	}
}

func TestCheckCRC16(t *testing.T) {
	var tests = []struct {
		bytes []byte
		ok    bool
	}{
		{bytes: []byte{0x0f, 0x00, 0x00, 0xcf, 0xfc}, ok: true},
		{bytes: []byte{0x0f, 0x00, 0x00, 0xfc, 0xcf}, ok: false},
		{bytes: []byte{0xff, 0xff}, ok: true},
		{bytes: []byte{0xff}, ok: false},
	}
	for _, test := range tests {
		if ok := CheckCRC16(test.bytes); ok != test.ok {
			t.Errorf("CheckCRC16(%#v)!=%t", test.bytes, test.ok)
		}
	}
}
