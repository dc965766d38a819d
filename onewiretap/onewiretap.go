// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package onewiretap implements a onewire.Bus that reports every transaction
// going through it as network layer events: a reset/presence, the ROM code
// addressed and the bytes that follow.
//
// The events carry synthetic timestamps, in nanoseconds since the Tap was
// created, computed from standard speed 1-Wire slot timings. They can be fed
// to a protocol decoder such as ds1977.Decoder.
package onewiretap

import (
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/owdecode/ds1977"
	"periph.io/x/conn/v3/onewire"
)

// ROM function commands.
const (
	readROM           = 0x33
	matchROM          = 0x55
	skipROM           = 0xcc
	resumeROM         = 0xa5
	overdriveSkipROM  = 0x3c
	overdriveMatchROM = 0x69
)

// Handler receives the events of a Tap.
type Handler interface {
	Handle(e ds1977.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(e ds1977.Event)

// Handle implements Handler.
func (f HandlerFunc) Handle(e ds1977.Event) {
	f(e)
}

// Opts contains the timings used to stamp events.
type Opts struct {
	ResetTime time.Duration // reset pulse and presence detect
	SlotTime  time.Duration // one bit time slot, recovery included
}

// DefaultOpts are the ds248x standard speed timings: 2*560µs reset, 64µs
// write zero low time plus 5.25µs recovery per slot.
var DefaultOpts = Opts{
	ResetTime: 2 * 560 * time.Microsecond,
	SlotTime:  64*time.Microsecond + 5250*time.Nanosecond,
}

// New returns a Tap forwarding all transactions to bus and reporting them to
// h. opts may be nil to use DefaultOpts.
func New(bus onewire.Bus, opts *Opts, h Handler) *Tap {
	if opts == nil {
		opts = &DefaultOpts
	}
	return &Tap{bus: bus, opts: *opts, h: h}
}

// Tap implements onewire.Bus.
type Tap struct {
	sync.Mutex
	bus  onewire.Bus
	opts Opts
	h    Handler
	now  time.Duration // end of the last reported event
}

func (t *Tap) String() string {
	return "tap(" + t.bus.String() + ")"
}

// Close closes the underlying bus if it implements io.Closer.
func (t *Tap) Close() error {
	if c, ok := t.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Tx implements onewire.Bus.
//
// The events are reported once the underlying transaction completed. A 1-wire
// bus error is reported as a reset without presence and nothing else; any
// other error is not reported at all.
func (t *Tap) Tx(w, r []byte, power onewire.Pullup) error {
	t.Lock()
	defer t.Unlock()
	err := t.bus.Tx(w, r, power)
	if err != nil {
		if _, ok := err.(onewire.BusError); ok {
			t.reset(false)
		}
		return err
	}
	t.reset(true)
	switch {
	case len(w) >= 9 && (w[0] == matchROM || w[0] == overdriveMatchROM):
		t.skip(1)
		t.rom(w[1:9])
		w = w[9:]
	case len(w) == 1 && w[0] == readROM && len(r) >= 8:
		t.skip(1)
		t.rom(r[:8])
		w, r = nil, r[8:]
	case len(w) >= 1 && (w[0] == skipROM || w[0] == overdriveSkipROM || w[0] == resumeROM):
		t.skip(1)
		w = w[1:]
	}
	for _, b := range w {
		t.data(b)
	}
	for _, b := range r {
		t.data(b)
	}
	return nil
}

// Search implements onewire.Bus. It is forwarded without reporting events.
func (t *Tap) Search(alarmOnly bool) ([]onewire.Address, error) {
	t.Lock()
	defer t.Unlock()
	return t.bus.Search(alarmOnly)
}

//

func (t *Tap) reset(present bool) {
	i := t.advance(t.opts.ResetTime)
	t.h.Handle(ds1977.Reset{Interval: i, Present: present})
}

func (t *Tap) rom(b []byte) {
	i := t.advance(8 * t.byteTime())
	t.h.Handle(ds1977.ROM{Interval: i, Addr: onewire.Address(binary.LittleEndian.Uint64(b))})
}

func (t *Tap) data(b byte) {
	i := t.advance(t.byteTime())
	t.h.Handle(ds1977.Data{Interval: i, Value: b})
}

// skip accounts for n bytes that are not reported.
func (t *Tap) skip(n int) {
	t.advance(time.Duration(n) * t.byteTime())
}

func (t *Tap) byteTime() time.Duration {
	return 8 * t.opts.SlotTime
}

func (t *Tap) advance(d time.Duration) ds1977.Interval {
	i := ds1977.Interval{Start: uint64(t.now), End: uint64(t.now + d)}
	t.now += d
	return i
}

var _ onewire.Bus = &Tap{}
