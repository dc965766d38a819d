// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
)

// op is the DS1977 operation to run.
type op int

const (
	opReadScratchpad op = iota
	opWriteScratchpad
	opCopyScratchpad
	opReadMemory
)

var opNames = [...]string{"read-scratchpad", "write-scratchpad", "copy-scratchpad", "read-memory"}

func (o op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Set implements flag.Value.
func (o *op) Set(s string) error {
	for i, n := range opNames {
		if n == s {
			*o = op(i)
			return nil
		}
	}
	return fmt.Errorf("unknown operation %q: expected read-scratchpad, write-scratchpad, copy-scratchpad or read-memory", s)
}

// parsePassword decodes 16 hex digits. An empty string is the all zeros
// password.
func parsePassword(s string) ([8]byte, error) {
	var p [8]byte
	if s == "" {
		return p, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return p, fmt.Errorf("-password: %v", err)
	}
	if len(b) != len(p) {
		return p, fmt.Errorf("-password: need %d bytes, got %d", len(p), len(b))
	}
	copy(p[:], b)
	return p, nil
}
