// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ds1977 decodes and drives the Dallas/Maxim DS1977 password
// protected 32KB EEPROM iButton.
//
// Decoder stacks on top of a 1-Wire network layer decoder: it consumes
// Reset, ROM and Data events and turns the memory function commands into
// time-spanned annotations (command, target address, passwords, data, ending
// offset and status).
//
// Dev talks to a DS1977 over a onewire.Bus.
//
// Datasheet
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/DS1977.pdf
package ds1977

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/owdecode/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// PageSize is the size of a memory page and of the scratchpad.
const PageSize = 64

// MemorySize is the size of the data memory; the password and control
// registers live past it.
const MemorySize = 0x7f80

// Scratchpad is the content of the scratchpad as returned by Read Scratchpad.
type Scratchpad struct {
	Addr uint16 // target address TA2:TA1
	ES   byte   // ending offset and status byte
	Data []byte // bytes from the target offset to the ending offset
}

// EndingOffset is the offset of the last byte written to the scratchpad.
func (s *Scratchpad) EndingOffset() byte {
	return s.ES & 0x3f
}

// Partial reports that the last Write Scratchpad did not end on a byte
// boundary.
func (s *Scratchpad) Partial() bool {
	return s.ES&0x40 != 0
}

// Authorized reports that a Copy Scratchpad was accepted.
func (s *Scratchpad) Authorized() bool {
	return s.ES&0x80 != 0
}

// New returns an object that communicates over 1-wire to the DS1977 with the
// specified 64-bit address.
func New(o onewire.Bus, addr onewire.Address) (*Dev, error) {
	if f := byte(addr & 0xff); f != Family {
		return nil, fmt.Errorf("ds1977: invalid family code 0x%02x", f)
	}
	return &Dev{onewire: onewire.Dev{Bus: o, Addr: addr}}, nil
}

// Dev is a handle to a DS1977 on a 1-wire bus.
type Dev struct {
	onewire onewire.Dev
}

func (d *Dev) String() string {
	return "DS1977{" + d.onewire.String() + "}"
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return nil
}

// WriteScratchpad writes data to the scratchpad at the target address.
//
// The data must not cross the end of the scratchpad. When it reaches the end
// the CRC sent back by the device is verified.
func (d *Dev) WriteScratchpad(addr uint16, data []byte) error {
	if len(data) == 0 {
		return errors.New("ds1977: no data to write")
	}
	if addr >= MemorySize {
		return fmt.Errorf("ds1977: invalid target address 0x%04x", addr)
	}
	end := int(addr%PageSize) + len(data)
	if end > PageSize {
		return errors.New("ds1977: data crosses the end of the scratchpad")
	}
	w := append([]byte{byte(WriteScratchpad), byte(addr), byte(addr >> 8)}, data...)
	if end < PageSize {
		return d.onewire.Tx(w, nil)
	}
	var crc [2]byte
	if err := d.onewire.Tx(w, crc[:]); err != nil {
		return err
	}
	if !common.CheckCRC16(append(w, crc[:]...)) {
		return busError("ds1977: incorrect write scratchpad CRC")
	}
	return nil
}

// ReadScratchpad returns the target address, the ending offset and status
// byte and the data of the scratchpad.
func (d *Dev) ReadScratchpad() (Scratchpad, error) {
	// The length of the answer is only known once E/S is read; read the
	// longest possible answer, the device pads with 0xff.
	var r [3 + PageSize + 2]byte
	if err := d.onewire.Tx([]byte{byte(ReadScratchpad)}, r[:]); err != nil {
		return Scratchpad{}, err
	}
	sp := Scratchpad{Addr: uint16(r[1])<<8 | uint16(r[0]), ES: r[2]}
	start := int(sp.Addr % PageSize)
	end := int(sp.EndingOffset())
	if end < start {
		if allOnes(r[:]) {
			return Scratchpad{}, busError("ds1977: device did not respond")
		}
		return Scratchpad{}, busError("ds1977: ending offset before target address")
	}
	n := 3 + end - start + 1
	buf := append([]byte{byte(ReadScratchpad)}, r[:n+2]...)
	if !common.CheckCRC16(buf) {
		if allOnes(r[:]) {
			return Scratchpad{}, busError("ds1977: device did not respond")
		}
		return Scratchpad{}, busError("ds1977: incorrect scratchpad CRC")
	}
	sp.Data = append([]byte(nil), r[3:n]...)
	return sp, nil
}

// CopyScratchpad copies the scratchpad to memory. sp must be the value
// returned by ReadScratchpad; its address and E/S byte form the authorization
// pattern. password is the full access password.
func (d *Dev) CopyScratchpad(sp Scratchpad, password [8]byte) error {
	w := make([]byte, 0, 12)
	w = append(w, byte(CopyScratchpadWithPassword), byte(sp.Addr), byte(sp.Addr>>8), sp.ES)
	w = append(w, password[:]...)
	var r [1]byte
	if err := d.onewire.TxPower(w, r[:]); err != nil {
		return err
	}
	switch r[0] {
	case 0xaa, 0x55:
		return nil
	case 0xff:
		return busError("ds1977: copy scratchpad not authorized")
	default:
		return busError(fmt.Sprintf("ds1977: copy scratchpad failed (0x%02x)", r[0]))
	}
}

// ReadMemory reads n bytes of memory starting at addr using the read access
// password.
//
// The device appends a CRC at every page end; each one is verified.
func (d *Dev) ReadMemory(addr uint16, password [8]byte, n int) ([]byte, error) {
	if n <= 0 || int(addr)+n > MemorySize {
		return nil, fmt.Errorf("ds1977: invalid read of %d bytes at 0x%04x", n, addr)
	}
	w := make([]byte, 0, 11)
	w = append(w, byte(ReadMemoryWithPassword), byte(addr), byte(addr>>8))
	w = append(w, password[:]...)

	// Pages are read up to their end, each one followed by its CRC.
	var pages []int
	for left, first := n, PageSize-int(addr%PageSize); left > 0; first = PageSize {
		pages = append(pages, first)
		left -= first
	}
	size := 0
	for _, p := range pages {
		size += p + 2
	}
	r := make([]byte, size)
	if err := d.onewire.Tx(w, r); err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	off := 0
	for i, p := range pages {
		seg := r[off : off+p+2]
		buf := seg
		if i == 0 {
			// The first CRC also covers the command and the target address.
			buf = append([]byte{w[0], w[1], w[2]}, seg...)
		}
		if !common.CheckCRC16(buf) {
			if allOnes(seg) {
				return nil, busError("ds1977: read access password rejected")
			}
			return nil, busError(fmt.Sprintf("ds1977: incorrect CRC for page %d", (int(addr)+len(out))/PageSize))
		}
		out = append(out, seg[:p]...)
		off += p + 2
	}
	return out[:n], nil
}

func allOnes(b []byte) bool {
	for _, v := range b {
		if v != 0xff {
			return false
		}
	}
	return true
}

// busError implements error and onewire.BusError.
type busError string

func (e busError) Error() string  { return string(e) }
func (e busError) BusError() bool { return true }

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
