// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen1d renders DHT22 readings as a one line gauge on the terminal
// (stdout) using ANSI color codes.
//
// The bar length follows the relative humidity and its color the temperature,
// from blue when freezing to red when hot.
package screen1d

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/GermanBionicSystems/dht22/dht22"
)

// Opts represents the options available for this display.
type Opts struct {
	// X is the number of cells of the bar.
	X       int
	Palette *ansi256.Palette
	// W defaults to stdout.
	W io.Writer

	_ struct{}
}

// Temperatures mapped to the two ends of the color scale, in tenths of °C.
const (
	coldest dht22.Temperature = -100
	hottest dht22.Temperature = 400
)

var empty = color.NRGBA{0x30, 0x30, 0x30, 0xff}

// Dev is a humidity bar drawn on the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{w: w, l: opts.X, palette: *p}
}

func (d *Dev) String() string {
	return "Screen1D"
}

// Halt implements conn.Resource.
//
// It resets the colors so the terminal is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show redraws the line with r. ok false, as returned by dht22.Dev.Read
// before the first valid acquisition, draws an empty bar.
func (d *Dev) Show(r dht22.Reading, ok bool) error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	filled := 0
	if ok {
		filled = int((int(r.Humidity)*d.l + 500) / 1000)
		if filled > d.l {
			filled = d.l
		}
	}
	c := heat(r.Temperature)
	for i := 0; i < d.l; i++ {
		if i == filled {
			c = empty
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	if ok {
		_, _ = fmt.Fprintf(&d.buf, "%8s %9s", r.Temperature, r.Humidity)
	} else {
		_, _ = d.buf.WriteString("no reading")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// heat interpolates between blue and red.
func heat(t dht22.Temperature) color.NRGBA {
	if t < coldest {
		t = coldest
	}
	if t > hottest {
		t = hottest
	}
	f := int(t-coldest) * 255 / int(hottest-coldest)
	return color.NRGBA{byte(f), 0x40, byte(255 - f), 0xff}
}

var _ fmt.Stringer = &Dev{}
