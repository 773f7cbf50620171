// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen1d

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"

	"github.com/GermanBionicSystems/dht22/dht22"
)

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{X: 10, W: &buf})
	if s := d.String(); s != "Screen1D" {
		t.Fatal(s)
	}
	if err := d.Show(dht22.Reading{Temperature: 150, Humidity: 652}, true); err != nil {
		t.Fatal(err)
	}
	hot := ansi256.Default.Block(heat(150))
	cold := ansi256.Default.Block(empty)
	expected := "\r\033[0m" + strings.Repeat(hot, 7) + strings.Repeat(cold, 3) + "\033[0m " + "  15.0°C   65.2%rH"
	if got := buf.String(); got != expected {
		t.Fatalf("%q != %q", got, expected)
	}

	buf.Reset()
	if err := d.Show(dht22.Reading{}, false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\r\033[0m"+strings.Repeat(cold, 10)+"\033[0m no reading" {
		t.Fatalf("unexpected output %q", got)
	}

	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestShow_saturated(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{X: 4, W: &buf})
	// Humidity above 100% caps the bar at its full width.
	if err := d.Show(dht22.Reading{Temperature: 0, Humidity: 1200}, true); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), ansi256.Default.Block(empty)) {
		t.Fatal("bar not full")
	}
}

func TestHeat(t *testing.T) {
	for _, tc := range []struct {
		t    dht22.Temperature
		want color.NRGBA
	}{
		{-400, color.NRGBA{0, 0x40, 255, 0xff}},
		{-100, color.NRGBA{0, 0x40, 255, 0xff}},
		{400, color.NRGBA{255, 0x40, 0, 0xff}},
		{900, color.NRGBA{255, 0x40, 0, 0xff}},
		{150, color.NRGBA{127, 0x40, 128, 0xff}},
	} {
		if got := heat(tc.t); got != tc.want {
			t.Errorf("heat(%s) = %v, want %v", tc.t, got, tc.want)
		}
	}
}
