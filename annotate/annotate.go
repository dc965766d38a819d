// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package annotate renders the annotations of a ds1977.Decoder, either as
// colored lines on a terminal or as a timeline image.
package annotate

import (
	"image/color"
	"sync"

	"github.com/GermanBionicSystems/owdecode/ds1977"
)

// Sink receives decoded annotations.
type Sink interface {
	Annotate(a ds1977.Annotation)
}

// Handler decodes events and fans the resulting annotations out to sinks.
//
// It implements onewiretap.Handler.
type Handler struct {
	mu    sync.Mutex
	dec   *ds1977.Decoder
	sinks []Sink
}

// NewHandler returns a Handler with a fresh decoder.
func NewHandler(sinks ...Sink) *Handler {
	return &Handler{dec: ds1977.NewDecoder(), sinks: sinks}
}

// Handle decodes e.
func (h *Handler) Handle(e ds1977.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, a := range h.dec.Decode(e) {
		for _, s := range h.sinks {
			s.Annotate(a)
		}
	}
}

// FamilyCode returns the family code of the last ROM seen, if any.
func (h *Handler) FamilyCode() (byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dec.FamilyCode()
}

// Color returns the color used to draw a category.
func Color(c ds1977.Category) color.NRGBA {
	if int(c) >= 0 && int(c) < len(palette) {
		return palette[c]
	}
	return color.NRGBA{0x80, 0x80, 0x80, 0xff}
}

var palette = [...]color.NRGBA{
	ds1977.CategoryData:         {0x4e, 0x9a, 0x06, 0xff},
	ds1977.CategoryReset:        {0x75, 0x50, 0x7b, 0xff},
	ds1977.CategoryROM:          {0xc4, 0xa0, 0x00, 0xff},
	ds1977.CategoryCommand:      {0x34, 0x65, 0xa4, 0xff},
	ds1977.CategoryPassword:     {0xce, 0x5c, 0x00, 0xff},
	ds1977.CategoryAddress:      {0x06, 0x98, 0x9a, 0xff},
	ds1977.CategoryEndingOffset: {0x72, 0x9f, 0xcf, 0xff},
	ds1977.CategoryStatus:       {0xad, 0x7f, 0xa8, 0xff},
	ds1977.CategoryCRC:          {0x8f, 0x59, 0x02, 0xff},
	ds1977.CategorySuccess:      {0x73, 0xd2, 0x16, 0xff},
	ds1977.CategoryFail:         {0xef, 0x29, 0x29, 0xff},
	ds1977.CategoryError:        {0xa4, 0x00, 0x00, 0xff},
	ds1977.CategoryAuthPattern:  {0xfc, 0xaf, 0x3e, 0xff},
}
