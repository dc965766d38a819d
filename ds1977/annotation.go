// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1977

import (
	"fmt"
	"strconv"
)

// Category tags an annotation with the kind of field it describes.
type Category int

// Annotation categories.
const (
	CategoryData Category = iota
	CategoryReset
	CategoryROM
	CategoryCommand
	CategoryPassword
	CategoryAddress
	CategoryEndingOffset
	CategoryStatus
	CategoryCRC
	CategorySuccess
	CategoryFail
	CategoryError
	CategoryAuthPattern
)

var categoryNames = [...]struct{ tag, desc string }{
	CategoryData:         {"data", "Data"},
	CategoryReset:        {"reset", "Reset/Presence"},
	CategoryROM:          {"rom", "ROM"},
	CategoryCommand:      {"command", "Command"},
	CategoryPassword:     {"password", "Password"},
	CategoryAddress:      {"address", "Address"},
	CategoryEndingOffset: {"ending-offset", "Ending Offset"},
	CategoryStatus:       {"status", "Data Status"},
	CategoryCRC:          {"crc", "CRC"},
	CategorySuccess:      {"success", "Success"},
	CategoryFail:         {"fail", "Fail"},
	CategoryError:        {"error", "Error"},
	CategoryAuthPattern:  {"auth-pattern", "Authorization Pattern"},
}

// Categories lists every category in declaration order.
func Categories() []Category {
	c := make([]Category, len(categoryNames))
	for i := range c {
		c[i] = Category(i)
	}
	return c
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c].tag
}

// Description returns the human readable name of the category.
func (c Category) Description() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return c.String()
	}
	return categoryNames[c].desc
}

// Row returns the display row the category is grouped in.
func (c Category) Row() Row {
	if c == CategoryError {
		return RowError
	}
	return RowBits
}

// Row is a display row grouping several categories.
type Row int

// Display rows.
const (
	RowBits Row = iota
	RowError
)

// Rows lists the display rows top to bottom.
func Rows() []Row {
	return []Row{RowBits, RowError}
}

func (r Row) String() string {
	switch r {
	case RowBits:
		return "bits"
	case RowError:
		return "error"
	default:
		return "Row(" + strconv.Itoa(int(r)) + ")"
	}
}

// Binary identifies a raw byte stream a consumer can subscribe to.
//
// The streams are declared for consumers but the decoder does not populate
// them.
type Binary int

// Binary streams.
const (
	BinaryMemRead Binary = iota
	BinaryReadPassword
	BinaryFullPassword
)

func (b Binary) String() string {
	switch b {
	case BinaryMemRead:
		return "mem_read"
	case BinaryReadPassword:
		return "read_pwd"
	case BinaryFullPassword:
		return "full_pwd"
	default:
		return "Binary(" + strconv.Itoa(int(b)) + ")"
	}
}

// Description returns the human readable name of the stream.
func (b Binary) Description() string {
	switch b {
	case BinaryMemRead:
		return "Data read from memory"
	case BinaryReadPassword:
		return "Read Access Password"
	case BinaryFullPassword:
		return "Full Access Password"
	default:
		return b.String()
	}
}

// Annotation is a decoded field.
type Annotation struct {
	Category Category
	Interval
	// Texts is ordered from the most to the least verbose variant.
	Texts []string
}

// Text returns the variant for the verbosity level, 0 being the most
// verbose. Levels past the last variant return the last one.
func (a Annotation) Text(level int) string {
	if len(a.Texts) == 0 {
		return ""
	}
	if level < 0 {
		level = 0
	}
	if level >= len(a.Texts) {
		level = len(a.Texts) - 1
	}
	return a.Texts[level]
}

func (a Annotation) String() string {
	return fmt.Sprintf("%d-%d %s: %s", a.Start, a.End, a.Category, a.Text(0))
}
