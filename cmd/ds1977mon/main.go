// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ds1977mon runs one DS1977 operation through a tapped 1-wire bus and prints
// the decoded protocol annotations.
//
// The bus is a DS9097 style serial adapter (-port), a DS2482/DS2483 I²C
// master (-i2c) or the first 1-wire bus registered by periph.
//
// Defaults for -port, -rom, -password and -v can be set with the DS1977_PORT,
// DS1977_ROM, DS1977_PASSWORD and DS1977_VERBOSITY environment variables,
// optionally loaded from a .env file.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/owdecode/annotate"
	"github.com/GermanBionicSystems/owdecode/ds1977"
	"github.com/GermanBionicSystems/owdecode/ds9097"
	"github.com/GermanBionicSystems/owdecode/onewiretap"
	"github.com/joho/godotenv"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/devices/v3/ds248x"
	"periph.io/x/host/v3"
)

type config struct {
	rom       onewire.Address // 0 means search
	op        op
	addr      uint16
	data      []byte
	password  [8]byte
	n         int
	verbosity int
	png       string
}

func run(bus onewire.Bus, c *config, w io.Writer) error {
	p := annotate.NewPrinter(&annotate.Opts{Verbosity: c.verbosity, W: w})
	sinks := []annotate.Sink{p}
	var tl *annotate.Timeline
	if c.png != "" {
		var err error
		if tl, err = annotate.NewTimeline(nil); err != nil {
			return err
		}
		sinks = append(sinks, tl)
	}
	tap := onewiretap.New(bus, nil, annotate.NewHandler(sinks...))

	addr := c.rom
	if addr == 0 {
		var err error
		if addr, err = find(tap); err != nil {
			return err
		}
		log.Printf("found 0x%016x", uint64(addr))
	}
	d, err := ds1977.New(tap, addr)
	if err != nil {
		return err
	}
	defer d.Halt()

	switch c.op {
	case opWriteScratchpad:
		err = d.WriteScratchpad(c.addr, c.data)
	case opReadScratchpad:
		var sp ds1977.Scratchpad
		if sp, err = d.ReadScratchpad(); err == nil {
			fmt.Fprintf(w, "TA: 0x%04x  E/S: 0x%02x  data: % x\n", sp.Addr, sp.ES, sp.Data)
		}
	case opCopyScratchpad:
		// The authorization pattern is whatever the scratchpad currently holds.
		var sp ds1977.Scratchpad
		if sp, err = d.ReadScratchpad(); err == nil {
			err = d.CopyScratchpad(sp, c.password)
		}
	case opReadMemory:
		var b []byte
		if b, err = d.ReadMemory(c.addr, c.password, c.n); err == nil {
			fmt.Fprint(w, hex.Dump(b))
		}
	default:
		err = fmt.Errorf("unsupported operation %s", c.op)
	}
	if err != nil {
		return err
	}
	if tl != nil {
		if err := tl.SavePNG(c.png); err != nil {
			return err
		}
		log.Printf("wrote %d annotations to %s", tl.Len(), c.png)
	}
	return p.Err()
}

// find returns the first DS1977 on the bus.
func find(bus onewire.Bus) (onewire.Address, error) {
	addrs, err := bus.Search(false)
	if err != nil {
		return 0, err
	}
	for _, a := range addrs {
		if byte(a) == ds1977.Family {
			return a, nil
		}
	}
	return 0, fmt.Errorf("no DS1977 among %d devices on %s", len(addrs), bus)
}

// i2cBus is a DS2482/DS2483 1-wire master owning its I²C bus.
type i2cBus struct {
	*ds248x.Dev
	i2c i2c.BusCloser
}

// Close closes the I²C bus.
func (b *i2cBus) Close() error {
	return b.i2c.Close()
}

// openBus returns the serial adapter on port, the ds248x at i2cAddr on the
// I²C bus i2cName, or else the first 1-wire bus registered by periph.
func openBus(port, i2cName string, i2cAddr uint) (onewire.BusCloser, error) {
	if port != "" && i2cName != "" {
		return nil, errors.New("-port and -i2c are mutually exclusive")
	}
	if port != "" {
		d, err := ds9097.Open(port)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if i2cName == "" {
		return onewirereg.Open("")
	}
	b, err := i2creg.Open(i2cName)
	if err != nil {
		return nil, err
	}
	d, err := ds248x.New(b, uint16(i2cAddr), &ds248x.DefaultOpts)
	if err != nil {
		b.Close()
		return nil, err
	}
	return &i2cBus{Dev: d, i2c: b}, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func mainImpl() error {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	verbosity, err := strconv.Atoi(getenv("DS1977_VERBOSITY", "0"))
	if err != nil {
		return fmt.Errorf("DS1977_VERBOSITY: %v", err)
	}

	c := config{op: opReadScratchpad}
	port := flag.String("port", getenv("DS1977_PORT", ""), "serial port of a DS9097 style adapter; default is the first 1-wire bus found by periph")
	i2cName := flag.String("i2c", "", "I²C bus of a DS2482/DS2483 1-wire master, e.g. \"1\"")
	i2cAddr := flag.Uint("i2c-addr", 0x18, "I²C address of the DS2482/DS2483")
	rom := flag.String("rom", getenv("DS1977_ROM", ""), "64 bits ROM code in hex; default is the first DS1977 found")
	flag.Var(&c.op, "op", "operation: read-scratchpad, write-scratchpad, copy-scratchpad or read-memory")
	addr := flag.Uint("addr", 0, "target address")
	data := flag.String("data", "", "hex data for write-scratchpad")
	password := flag.String("password", getenv("DS1977_PASSWORD", ""), "8 bytes password in hex")
	flag.IntVar(&c.n, "n", ds1977.PageSize, "number of bytes for read-memory")
	flag.IntVar(&c.verbosity, "v", verbosity, "annotation verbosity, 0 being the most verbose")
	flag.StringVar(&c.png, "png", "", "also render the annotations to this PNG file")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	if *addr >= ds1977.MemorySize {
		return fmt.Errorf("-addr 0x%x out of range", *addr)
	}
	c.addr = uint16(*addr)
	if *rom != "" {
		v, err := strconv.ParseUint(strings.TrimPrefix(*rom, "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("-rom: %v", err)
		}
		c.rom = onewire.Address(v)
	}
	if c.data, err = hex.DecodeString(*data); err != nil {
		return fmt.Errorf("-data: %v", err)
	}
	if c.password, err = parsePassword(*password); err != nil {
		return err
	}

	bus, err := openBus(*port, *i2cName, *i2cAddr)
	if err != nil {
		return err
	}
	defer bus.Close()
	log.Printf("using %s", bus)
	return run(bus, &c, os.Stdout)
}

func main() {
	log.SetFlags(0)
	if err := mainImpl(); err != nil {
		log.Fatalf("ds1977mon: %v", err)
	}
}
