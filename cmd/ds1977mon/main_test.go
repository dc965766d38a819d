// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewiretest"
)

var (
	ds18b20Addr onewire.Address = 0x740000070e41ac28
	ds1977Addr  onewire.Address = 0xc30000000012e637
)

var matchROM = []byte{0x55, 0x37, 0xe6, 0x12, 0x00, 0x00, 0x00, 0x00, 0xc3}

func scratchpad() []byte {
	r := []byte{0x10, 0x00, 0x12, 0x01, 0x02, 0x03, 0xe2, 0xbc}
	return append(r, bytes.Repeat([]byte{0xff}, 69-len(r))...)
}

func TestRun_search(t *testing.T) {
	bus := onewiretest.Playback{
		Ops: []onewiretest.IO{
			{W: []byte{0xf0}},
			{W: []byte{0xf0}},
			{W: append(append([]byte(nil), matchROM...), 0xaa), R: scratchpad()},
		},
		Devices: []onewire.Address{ds18b20Addr, ds1977Addr},
	}
	var out bytes.Buffer
	png := filepath.Join(t.TempDir(), "out.png")
	if err := run(&bus, &config{op: opReadScratchpad, verbosity: 0, png: png}, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		"ROM: 0xc30000000012e637 (family code 0x37 matches DS1977)",
		"Read Scratchpad",
		"Target address: 0x0010",
		"Ending Offset: 18",
		"Data status: OK",
		"TA: 0x0010  E/S: 0x12  data: 01 02 03\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
	if _, err := os.Stat(png); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRun_writeScratchpad(t *testing.T) {
	bus := onewiretest.Playback{Ops: []onewiretest.IO{
		{W: append(append([]byte(nil), matchROM...), 0x0f, 0x10, 0x00, 0x01, 0x02)},
	}}
	var out bytes.Buffer
	c := config{rom: ds1977Addr, op: opWriteScratchpad, addr: 0x10, data: []byte{1, 2}, verbosity: 1}
	if err := run(&bus, &c, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Data(2): 01 02") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRun_fail(t *testing.T) {
	bus := onewiretest.Playback{Ops: []onewiretest.IO{{W: []byte{0xf0}}}, Devices: []onewire.Address{ds18b20Addr}}
	var out bytes.Buffer
	if err := run(&bus, &config{}, &out); err == nil {
		t.Fatal("no DS1977 on the bus")
	}
	if err := run(&bus, &config{rom: ds18b20Addr}, &out); err == nil {
		t.Fatal("not a DS1977")
	}
}

func TestOp(t *testing.T) {
	var o op
	var _ flag.Value = &o
	for i, name := range []string{"read-scratchpad", "write-scratchpad", "copy-scratchpad", "read-memory"} {
		if err := o.Set(name); err != nil {
			t.Fatal(err)
		}
		if o != op(i) || o.String() != name {
			t.Errorf("Set(%q) = %s", name, o)
		}
	}
	if err := o.Set("erase"); err == nil {
		t.Fatal("expected error")
	}
	if s := op(10).String(); s != "op(10)" {
		t.Fatal(s)
	}
}

func TestParsePassword(t *testing.T) {
	p, err := parsePassword("0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}); diff != "" {
		t.Errorf("parsePassword() difference (-got +want):\n%s", diff)
	}
	if p, err := parsePassword(""); err != nil || p != [8]byte{} {
		t.Fatalf("%v %v", p, err)
	}
	for _, s := range []string{"0123", "zz23456789abcdef"} {
		if _, err := parsePassword(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}

func TestOpenBus_fail(t *testing.T) {
	if b, err := openBus("/dev/ttyUSB0", "1", 0x18); b != nil || err == nil {
		t.Fatal("-port and -i2c must conflict")
	}
}

func TestI2CBus_Close(t *testing.T) {
	p := &i2ctest.Playback{}
	var b onewire.BusCloser = &i2cBus{i2c: p}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}
