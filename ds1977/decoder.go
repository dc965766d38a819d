// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1977

import (
	"fmt"
	"strings"
)

// Family is the DS1977 1-Wire family code.
const Family byte = 0x37

// Decoder turns the events of a 1-Wire network layer decoder into DS1977
// annotations.
//
// Decoder is not safe for concurrent use; events must be delivered in time
// order.
type Decoder struct {
	bytes     []byte   // bytes since the last reset or ROM event
	family    byte     // family code of the last ROM event
	hasFamily bool     // a ROM event was seen
	span      Interval // interval of the next annotation
	out       []Annotation
}

// NewDecoder returns a Decoder ready to receive the first event.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset discards all state, including the last family code.
func (d *Decoder) Reset() {
	d.endTransaction()
	d.family = 0
	d.hasFamily = false
	d.span = Interval{}
}

// FamilyCode returns the family code of the last ROM event.
func (d *Decoder) FamilyCode() (byte, bool) {
	return d.family, d.hasFamily
}

// Decode processes a single event and returns the annotations it completes,
// in order. It returns nil when the event does not complete any field.
//
// It panics if e is nil or not one of Reset, ROM or Data.
func (d *Decoder) Decode(e Event) []Annotation {
	d.out = nil
	switch e := e.(type) {
	case Reset:
		d.span = e.Interval
		d.put(CategoryReset, fmt.Sprintf("Reset/Presence: %t", e.Present))
		d.endTransaction()
	case ROM:
		d.span = e.Interval
		d.family = byte(e.Addr & 0xff)
		d.hasFamily = true
		var note string
		if d.family == Family {
			note = fmt.Sprintf("family code 0x%02x matches DS1977", d.family)
		} else {
			note = fmt.Sprintf("family code 0x%02x unknown", d.family)
		}
		d.put(CategoryROM,
			fmt.Sprintf("ROM: 0x%016x (%s)", uint64(e.Addr), note),
			fmt.Sprintf("ROM: 0x%016x (DS1977)", uint64(e.Addr)),
			fmt.Sprintf("ROM: 0x%016x", uint64(e.Addr)))
		d.endTransaction()
	case Data:
		d.data(e)
	default:
		panic(fmt.Sprintf("ds1977: unexpected event %T", e))
	}
	return d.out
}

// endTransaction marks a transaction boundary.
func (d *Decoder) endTransaction() {
	d.bytes = d.bytes[:0]
}

func (d *Decoder) data(e Data) {
	d.bytes = append(d.bytes, e.Value)
	if len(d.bytes) == 1 {
		d.span = e.Interval
		if name, abbrev, ok := Lookup(e.Value); ok {
			d.put(CategoryCommand, name, abbrev)
		} else {
			d.put(CategoryError, fmt.Sprintf("Unrecognized command: 0x%02x", e.Value))
		}
		return
	}
	switch Command(d.bytes[0]) {
	case WriteScratchpad:
		d.writeScratchpad(e.Interval)
	case ReadScratchpad:
		d.readScratchpad(e.Interval)
	case CopyScratchpadWithPassword:
		d.copyScratchpad(e.Interval)
	case ReadMemoryWithPassword:
		d.readMemory(e.Interval)
	}
}

// writeScratchpad decodes [cmd, TA1, TA2, data...].
func (d *Decoder) writeScratchpad(i Interval) {
	n := len(d.bytes)
	d.targetAddress(i)
	if n == 4 {
		d.span.Start = i.Start
	}
	if n >= 4 {
		d.span.End = i.End
		d.putData(d.bytes[3:])
	}
}

// readScratchpad decodes [cmd, TA1, TA2, E/S, data...].
func (d *Decoder) readScratchpad(i Interval) {
	n := len(d.bytes)
	d.targetAddress(i)
	switch n {
	case 4:
		// E/S is sent LSB first: E5:E0 take the first 6 bit slots and the
		// status bits the last 2.
		split := i.Start + (i.End-i.Start)/4*3
		es := d.bytes[3]
		d.span = Interval{i.Start, split}
		d.put(CategoryEndingOffset, fmt.Sprintf("Ending Offset: %d", es&0x3f))
		d.span = Interval{split, i.End}
		status := "OK"
		if es&0xc0 != 0 {
			status = "Err"
		}
		d.put(CategoryStatus, "Data status: "+status)
	case 5:
		d.span.Start = i.Start
	}
	if n >= 5 {
		d.span.End = i.End
		d.putData(d.bytes[4:])
	}
}

// copyScratchpad decodes [cmd, TA1, TA2, E/S, password x8, confirmation].
func (d *Decoder) copyScratchpad(i Interval) {
	switch len(d.bytes) {
	case 2, 5:
		d.span.Start = i.Start
	case 4:
		d.span.End = i.End
		d.put(CategoryAuthPattern, "Authorization pattern (TA1, TA2, E/S): "+hexList(d.bytes[1:4], ", ", "0x%02x"))
	case 12:
		d.span.End = i.End
		d.put(CategoryPassword, "Full Access Password: "+hexList(d.bytes[4:12], " ", "%02x"))
	case 13:
		d.span = i
		if c := d.bytes[12]; c == 0xaa || c == 0x55 {
			d.put(CategorySuccess, "Operation Succeeded", "Success", "S")
		} else {
			d.put(CategoryFail, "Operation Failed", "Failed", "F")
		}
	}
}

// readMemory decodes [cmd, TA1, TA2, password x8, data...].
func (d *Decoder) readMemory(i Interval) {
	n := len(d.bytes)
	d.targetAddress(i)
	switch n {
	case 4, 12:
		d.span.Start = i.Start
	case 11:
		d.span.End = i.End
		d.put(CategoryPassword, "Read Access Password: "+hexList(d.bytes[3:11], " ", "%02x"))
	}
	if n >= 12 {
		d.span.End = i.End
		d.putData(d.bytes[11:])
	}
}

// targetAddress decodes the little endian TA1, TA2 pair following the
// command byte.
func (d *Decoder) targetAddress(i Interval) {
	switch len(d.bytes) {
	case 2:
		d.span.Start = i.Start
	case 3:
		d.span.End = i.End
		addr := uint16(d.bytes[2])<<8 | uint16(d.bytes[1])
		d.put(CategoryAddress, fmt.Sprintf("Target address: 0x%04x", addr))
	}
}

// putData emits the running view of a payload; it is called again with a
// wider span for every byte added to the payload.
func (d *Decoder) putData(payload []byte) {
	d.put(CategoryData, fmt.Sprintf("Data(%d): %s", len(payload), hexList(payload, " ", "%02x")))
}

func (d *Decoder) put(c Category, texts ...string) {
	d.out = append(d.out, Annotation{Category: c, Interval: d.span, Texts: texts})
}

func hexList(b []byte, sep, format string) string {
	s := make([]string, len(b))
	for i, v := range b {
		s[i] = fmt.Sprintf(format, v)
	}
	return strings.Join(s, sep)
}
