// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package annotate

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/GermanBionicSystems/owdecode/ds1977"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts represents the options available for a Printer.
type Opts struct {
	// Verbosity selects the annotation text variant, 0 being the longest.
	Verbosity int
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W io.Writer

	_ struct{}
}

// Printer writes one colored line per annotation.
type Printer struct {
	mu        sync.Mutex
	w         io.Writer
	verbosity int
	palette   ansi256.Palette
	buf       bytes.Buffer
	err       error
}

// NewPrinter returns a Printer. opts may be nil.
func NewPrinter(opts *Opts) *Printer {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Printer{w: w, verbosity: opts.Verbosity, palette: *p}
}

func (p *Printer) String() string {
	return "Printer"
}

// Annotate implements Sink.
//
// Write errors are sticky and returned by Err.
func (p *Printer) Annotate(a ds1977.Annotation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	p.buf.Reset()
	_, _ = p.buf.WriteString(p.palette.Block(Color(a.Category)))
	_, _ = fmt.Fprintf(&p.buf, "\033[0m %10d-%-10d %-5s %-13s %s\n", a.Start, a.End, a.Category.Row(), a.Category, a.Text(p.verbosity))
	_, p.err = p.buf.WriteTo(p.w)
}

// Err returns the first write error encountered.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Halt resets the terminal colors.
func (p *Printer) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.w.Write([]byte("\033[0m"))
	return err
}

var _ Sink = &Printer{}
var _ fmt.Stringer = &Printer{}
