// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package annotate

import (
	"errors"
	"image"
	"sync"

	"github.com/GermanBionicSystems/owdecode/ds1977"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// TimelineOpts represents the options available for a Timeline.
type TimelineOpts struct {
	Width      int     // image width in pixels
	LaneHeight int     // height of each annotation row in pixels
	FontSize   float64 // in points

	_ struct{}
}

// DefaultTimelineOpts is the recommended default options.
var DefaultTimelineOpts = TimelineOpts{
	Width:      1600,
	LaneHeight: 28,
	FontSize:   11,
}

// Timeline collects annotations and draws them as one lane per
// ds1977.Row, time flowing left to right.
type Timeline struct {
	mu    sync.Mutex
	opts  TimelineOpts
	face  font.Face
	items []ds1977.Annotation
}

// NewTimeline returns a Timeline. opts may be nil to use
// DefaultTimelineOpts.
func NewTimeline(opts *TimelineOpts) (*Timeline, error) {
	if opts == nil {
		opts = &DefaultTimelineOpts
	}
	if opts.Width <= labelWidth || opts.LaneHeight <= 0 || opts.FontSize <= 0 {
		return nil, errors.New("annotate: invalid timeline dimensions")
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Timeline{
		opts: *opts,
		face: truetype.NewFace(f, &truetype.Options{Size: opts.FontSize}),
	}, nil
}

// Annotate implements Sink.
func (t *Timeline) Annotate(a ds1977.Annotation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, a)
}

// Len returns the number of annotations collected.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Image draws the annotations collected so far.
//
// Each annotation is drawn with the longest text variant fitting in its box.
func (t *Timeline) Image() image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := ds1977.Rows()
	lh := float64(t.opts.LaneHeight)
	dc := gg.NewContext(t.opts.Width, len(rows)*t.opts.LaneHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(t.face)

	dc.SetRGB(0, 0, 0)
	for i, r := range rows {
		dc.DrawStringAnchored(r.String(), 4, lh*(float64(i)+0.5), 0, 0.5)
	}
	if len(t.items) == 0 {
		return dc.Image()
	}

	start, end := t.items[0].Start, t.items[0].End
	for _, a := range t.items[1:] {
		if a.Start < start {
			start = a.Start
		}
		if a.End > end {
			end = a.End
		}
	}
	span := float64(end - start)
	if span == 0 {
		span = 1
	}
	scale := float64(t.opts.Width-labelWidth) / span
	for _, a := range t.items {
		lane := 0
		for i, r := range rows {
			if r == a.Category.Row() {
				lane = i
			}
		}
		x := labelWidth + float64(a.Start-start)*scale
		w := float64(a.End-a.Start) * scale
		if w < 1 {
			w = 1
		}
		y := float64(lane) * lh
		dc.SetColor(Color(a.Category))
		dc.DrawRectangle(x, y+1, w, lh-2)
		dc.Fill()
		for _, s := range a.Texts {
			if tw, _ := dc.MeasureString(s); tw <= w-4 {
				dc.SetRGB(1, 1, 1)
				dc.DrawStringAnchored(s, x+w/2, y+lh/2, 0.5, 0.5)
				break
			}
		}
	}
	return dc.Image()
}

// SavePNG draws the timeline into the PNG file path.
func (t *Timeline) SavePNG(path string) error {
	return gg.SavePNG(path, t.Image())
}

//

// labelWidth is the space reserved on the left for the row names.
const labelWidth = 40

var _ Sink = &Timeline{}
