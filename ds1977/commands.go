// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1977

import "fmt"

// Command is a DS1977 memory function command, the first byte sent after the
// ROM function.
type Command byte

// Memory function commands, datasheet p.10.
const (
	WriteScratchpad            Command = 0x0f
	ReadScratchpad             Command = 0xaa
	CopyScratchpadWithPassword Command = 0x99
	ReadMemoryWithPassword     Command = 0x69
	VerifyPassword             Command = 0xc3
	ReadVersion                Command = 0xcc
)

type commandNames struct {
	name    string
	abbrev  string
	decoded bool
}

// commands only carries a field layout for the first four entries. Verify
// Password and Read Version are named but their payload is left undecoded.
var commands = map[Command]commandNames{
	WriteScratchpad:            {"Write Scratchpad", "WR Sc", true},
	ReadScratchpad:             {"Read Scratchpad", "RD Sc", true},
	CopyScratchpadWithPassword: {"Copy Scratchpad with Password", "WR Mem", true},
	ReadMemoryWithPassword:     {"Read Memory with Password", "RD Mem", true},
	VerifyPassword:             {"Verify Password", "Verify Pwd", false},
	ReadVersion:                {"Read Version Command", "RD Ver", false},
}

// Lookup returns the long and abbreviated display names of the command.
//
// ok is false for an opcode that is not part of the DS1977 command set.
func Lookup(opcode byte) (name, abbrev string, ok bool) {
	c, ok := commands[Command(opcode)]
	return c.name, c.abbrev, ok
}

// Known reports whether c is part of the DS1977 command set.
func (c Command) Known() bool {
	_, ok := commands[c]
	return ok
}

// Decoded reports whether the decoder splits the bytes following c into
// fields. It is false for unknown commands and for the commands that are only
// recognized by name.
func (c Command) Decoded() bool {
	return commands[c].decoded
}

func (c Command) String() string {
	if n, ok := commands[c]; ok {
		return n.name
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}
