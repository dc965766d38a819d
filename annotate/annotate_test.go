// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package annotate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/owdecode/ds1977"
	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

type collector []ds1977.Annotation

func (c *collector) Annotate(a ds1977.Annotation) {
	*c = append(*c, a)
}

func iv(start, end uint64) ds1977.Interval {
	return ds1977.Interval{Start: start, End: end}
}

func TestHandler(t *testing.T) {
	var a, b collector
	h := NewHandler(&a, &b)
	if _, ok := h.FamilyCode(); ok {
		t.Fatal("no ROM seen yet")
	}
	h.Handle(ds1977.Reset{Interval: iv(0, 10), Present: true})
	h.Handle(ds1977.ROM{Interval: iv(10, 20), Addr: 0xc30000000012e637})
	h.Handle(ds1977.Data{Interval: iv(20, 30), Value: 0xcc})
	want := []ds1977.Category{ds1977.CategoryReset, ds1977.CategoryROM, ds1977.CategoryCommand}
	var got []ds1977.Category
	for _, x := range a {
		got = append(got, x.Category)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("categories difference (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("sinks difference (-a +b):\n%s", diff)
	}
	if c, ok := h.FamilyCode(); !ok || c != ds1977.Family {
		t.Errorf("FamilyCode() = 0x%02x, %t", c, ok)
	}
}

func TestColor(t *testing.T) {
	seen := map[color.NRGBA]ds1977.Category{}
	for _, c := range ds1977.Categories() {
		col := Color(c)
		if col.A != 0xff {
			t.Errorf("%s is transparent", c)
		}
		if prev, ok := seen[col]; ok {
			t.Errorf("%s and %s share a color", c, prev)
		}
		seen[col] = c
	}
	if Color(ds1977.Category(-1)) != Color(ds1977.Category(100)) {
		t.Error("unknown categories should share the fallback color")
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&Opts{Verbosity: 1, W: &buf})
	if s := p.String(); s != "Printer" {
		t.Fatal(s)
	}
	p.Annotate(ds1977.Annotation{Category: ds1977.CategoryCommand, Interval: iv(820, 900), Texts: []string{"Read Scratchpad", "RS"}})
	p.Annotate(ds1977.Annotation{Category: ds1977.CategoryError, Interval: iv(900, 980), Texts: []string{"Unrecognized command: 0x12"}})
	if err := p.Err(); err != nil {
		t.Fatal(err)
	}
	want := ansi256.Default.Block(Color(ds1977.CategoryCommand)) +
		"\033[0m        820-900        bits  command       RS\n" +
		ansi256.Default.Block(Color(ds1977.CategoryError)) +
		"\033[0m        900-980        error error         Unrecognized command: 0x12\n"
	if diff := cmp.Diff(buf.String(), want); diff != "" {
		t.Errorf("output difference (-got +want):\n%s", diff)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\033[0m") {
		t.Error("Halt() should reset colors")
	}
}

type failingWriter struct {
	n int
}

func (f *failingWriter) Write(b []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestPrinter_fail(t *testing.T) {
	w := &failingWriter{}
	p := NewPrinter(&Opts{W: w})
	a := ds1977.Annotation{Category: ds1977.CategoryData, Interval: iv(0, 1), Texts: []string{"Data(1): 00"}}
	p.Annotate(a)
	p.Annotate(a)
	if p.Err() == nil {
		t.Fatal("expected error")
	}
	if w.n != 1 {
		t.Errorf("wrote %d times after an error", w.n)
	}
}

func TestNewTimeline_fail(t *testing.T) {
	for _, o := range []TimelineOpts{
		{Width: 10, LaneHeight: 20, FontSize: 10},
		{Width: 400, FontSize: 10},
		{Width: 400, LaneHeight: 20},
	} {
		if tl, err := NewTimeline(&o); tl != nil || err == nil {
			t.Errorf("%+v: expected error", o)
		}
	}
}

func TestTimeline(t *testing.T) {
	tl, err := NewTimeline(&TimelineOpts{Width: 440, LaneHeight: 20, FontSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	if got := tl.Image().Bounds(); got != image.Rect(0, 0, 440, 40) {
		t.Fatalf("empty timeline bounds %v", got)
	}
	// 1 pixel per time unit once the label column is removed.
	tl.Annotate(ds1977.Annotation{Category: ds1977.CategoryCommand, Interval: iv(0, 200), Texts: []string{"Read Scratchpad", "RS"}})
	tl.Annotate(ds1977.Annotation{Category: ds1977.CategoryError, Interval: iv(200, 400), Texts: []string{"Unrecognized command: 0x12"}})
	if tl.Len() != 2 {
		t.Fatalf("Len() = %d", tl.Len())
	}
	img := tl.Image()
	for _, tc := range []struct {
		x, y int
		c    ds1977.Category
	}{
		{labelWidth + 100, 3, ds1977.CategoryCommand},
		{labelWidth + 300, 23, ds1977.CategoryError},
	} {
		r, g, b, a := img.At(tc.x, tc.y).RGBA()
		want := Color(tc.c)
		got := color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != want {
			t.Errorf("%s at (%d,%d): got %v, want %v", tc.c, tc.x, tc.y, got, want)
		}
	}
	// Nothing is drawn in the error lane below the command.
	if r, g, b, _ := img.At(labelWidth+100, 23).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("expected background")
	}

	path := filepath.Join(t.TempDir(), "timeline.png")
	if err := tl.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Bounds() != img.Bounds() {
		t.Errorf("saved bounds %v", dec.Bounds())
	}
}
