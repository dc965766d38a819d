// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the 1-Wire CRC16 calculation.
package common

// CRC16 calculates the 16-bit 1-Wire CRC of the byte slice parameter and
// returns the inverted value, as transmitted by 1-Wire memory devices such as
// the DS1977.
//
// Polynomial x^16+x^15+x^2+1, processed LSB first, initial value 0.
func CRC16(bytes []byte) uint16 {
	var crc uint16
	for _, val := range bytes {
		for range 8 {
			if (uint16(val)^crc)&1 == 0 {
				crc >>= 1
			} else {
				crc = (crc >> 1) ^ 0xa001
			}
			val >>= 1
		}
	}
	return ^crc
}

// CheckCRC16 returns true if the last two bytes of the slice, LSB first, are
// the inverted CRC16 of the bytes before them.
func CheckCRC16(bytes []byte) bool {
	if len(bytes) < 2 {
		return false
	}
	n := len(bytes) - 2
	return uint16(bytes[n])|uint16(bytes[n+1])<<8 == CRC16(bytes[:n])
}
