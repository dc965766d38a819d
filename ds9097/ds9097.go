// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ds9097 implements a 1-wire bus master on a serial port, as done by
// the DS9097U adapter and any UART with its TX and RX lines tied to the 1-wire
// data line.
//
// Each 1-wire time slot is one UART character at 115200 baud: 0xff for a
// one or a read slot, 0x00 for a zero. The reset pulse is a 0xf0 character
// sent at 9600 baud; devices answering with a presence pulse corrupt the high
// nibble of the echo.
//
// See "Using an UART to Implement a 1-Wire Bus Master", Maxim application
// note 214.
package ds9097

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// Port is the subset of serial.Port used by Dev.
type Port interface {
	io.ReadWriter
	SetMode(mode *serial.Mode) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// Open opens the serial port name and returns a Dev using it.
func Open(name string) (*Dev, error) {
	p, err := serial.Open(name, &dataMode)
	if err != nil {
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	// Some adapters are powered from DTR.
	if err := p.SetDTR(true); err != nil {
		p.Close()
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	d, err := New(p)
	if err != nil {
		p.Close()
		return nil, err
	}
	d.name = name
	return d, nil
}

// New returns a Dev using an already open port.
func New(p Port) (*Dev, error) {
	if err := p.SetMode(&dataMode); err != nil {
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	return &Dev{name: "port", port: p}, nil
}

// Dev is a 1-wire bus master on a serial port. It implements
// onewire.BusSearcher.
//
// Strong pull-up is not available; Tx accepts onewire.StrongPullup and
// ignores it.
type Dev struct {
	sync.Mutex // lock for the bus while a transaction is in progress
	name       string
	port       Port
}

func (d *Dev) String() string {
	return "DS9097{" + d.name + "}"
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return nil
}

// Close closes the serial port.
func (d *Dev) Close() error {
	d.Lock()
	defer d.Unlock()
	return d.port.Close()
}

// Tx implements onewire.Bus.
func (d *Dev) Tx(w, r []byte, power onewire.Pullup) error {
	d.Lock()
	defer d.Unlock()

	if present, err := d.reset(); err != nil {
		return err
	} else if !present {
		return busError("ds9097: no device present")
	}
	for _, b := range w {
		if err := d.writeByte(b); err != nil {
			return err
		}
	}
	for i := range r {
		b, err := d.readByte()
		if err != nil {
			return err
		}
		r[i] = b
	}
	return nil
}

// Search implements onewire.Bus.
func (d *Dev) Search(alarmOnly bool) ([]onewire.Address, error) {
	return onewire.Search(d, alarmOnly)
}

// SearchTriplet implements onewire.BusSearcher: it reads a bit and its
// complement, then writes the direction taken.
//
// SearchTriplet should not be used directly, use Search instead.
func (d *Dev) SearchTriplet(direction byte) (onewire.TripletResult, error) {
	d.Lock()
	defer d.Unlock()

	var tr onewire.TripletResult
	bit, err := d.readBit()
	if err != nil {
		return tr, err
	}
	cmp, err := d.readBit()
	if err != nil {
		return tr, err
	}
	tr.GotZero = bit == 0
	tr.GotOne = cmp == 0
	switch {
	case tr.GotZero && tr.GotOne:
		tr.Taken = direction & 1
	case tr.GotZero:
		tr.Taken = 0
	default:
		tr.Taken = 1
	}
	return tr, d.writeBit(tr.Taken)
}

//

// reset issues a reset pulse and returns true if any device answered with a
// presence pulse.
func (d *Dev) reset() (bool, error) {
	if err := d.port.SetMode(&resetMode); err != nil {
		return false, fmt.Errorf("ds9097: %v", err)
	}
	echo, err := d.exchange([]byte{0xf0})
	if err2 := d.port.SetMode(&dataMode); err == nil && err2 != nil {
		err = fmt.Errorf("ds9097: %v", err2)
	}
	if err != nil {
		return false, err
	}
	if echo[0]&0x0f != 0 {
		return false, busError(fmt.Sprintf("ds9097: reset pulse error 0x%02x", echo[0]))
	}
	return echo[0] != 0xf0, nil
}

func (d *Dev) writeByte(b byte) error {
	var slots [8]byte
	for i := range slots {
		if b&(1<<uint(i)) != 0 {
			slots[i] = 0xff
		}
	}
	echo, err := d.exchange(slots[:])
	if err != nil {
		return err
	}
	for i := range slots {
		if echo[i] != slots[i] {
			return busError(fmt.Sprintf("ds9097: noise detected writing 0x%02x (got 0x%02x, expected 0x%02x)", b, echo[i], slots[i]))
		}
	}
	return nil
}

func (d *Dev) readByte() (byte, error) {
	echo, err := d.exchange([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if err != nil {
		return 0, err
	}
	var b byte
	for i, e := range echo {
		if e == 0xff {
			b |= 1 << uint(i)
		}
	}
	return b, nil
}

func (d *Dev) readBit() (byte, error) {
	echo, err := d.exchange([]byte{0xff})
	if err != nil {
		return 0, err
	}
	if echo[0] == 0xff {
		return 1, nil
	}
	return 0, nil
}

func (d *Dev) writeBit(bit byte) error {
	slot := byte(0x00)
	if bit != 0 {
		slot = 0xff
	}
	echo, err := d.exchange([]byte{slot})
	if err != nil {
		return err
	}
	if echo[0] != slot {
		return busError("ds9097: noise detected writing a bit")
	}
	return nil
}

// exchange sends the time slots and returns what was read back on the line.
func (d *Dev) exchange(w []byte) ([]byte, error) {
	if err := d.port.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	if err := d.port.ResetOutputBuffer(); err != nil {
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	if _, err := d.port.Write(w); err != nil {
		return nil, fmt.Errorf("ds9097: %v", err)
	}
	r := make([]byte, len(w))
	if _, err := io.ReadFull(d.port, r); err != nil {
		return nil, fmt.Errorf("ds9097: reading back %d slots: %v", len(w), err)
	}
	return r, nil
}

// busError implements error and onewire.BusError.
type busError string

func (e busError) Error() string  { return string(e) }
func (e busError) BusError() bool { return true }

var dataMode = serial.Mode{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

var resetMode = serial.Mode{
	BaudRate: 9600,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

var _ conn.Resource = &Dev{}
var _ onewire.BusSearcher = &Dev{}
