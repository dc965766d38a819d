// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1977

import "periph.io/x/conn/v3/onewire"

// Interval is the time span of an event or an annotation.
//
// The unit is chosen by the event source (samples, nanoseconds) and is only
// required to be ordered: End >= Start.
type Interval struct {
	Start uint64
	End   uint64
}

// Event is one item produced by a 1-Wire network layer decoder.
//
// It is one of Reset, ROM or Data.
type Event interface {
	Span() Interval
	event()
}

// Reset is a reset pulse, followed by a presence pulse if Present is true.
type Reset struct {
	Interval
	Present bool
}

// ROM is the 64-bit ROM code addressed by a ROM function (Match ROM, Read ROM
// or a completed search).
type ROM struct {
	Interval
	Addr onewire.Address
}

// Data is a single byte transferred after the ROM function.
type Data struct {
	Interval
	Value byte
}

// Span implements Event.
func (r Reset) Span() Interval { return r.Interval }

// Span implements Event.
func (r ROM) Span() Interval { return r.Interval }

// Span implements Event.
func (d Data) Span() Interval { return d.Interval }

func (Reset) event() {}
func (ROM) event()   {}
func (Data) event()  {}

var _ Event = Reset{}
var _ Event = ROM{}
var _ Event = Data{}
