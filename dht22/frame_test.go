// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestDecode(t *testing.T) {
	var tests = []struct {
		frame       Frame
		temperature Temperature
		humidity    Humidity
	}{
		{Frame{0x02, 0x8c, 0x01, 0x11, 0xa0}, 273, 652},
		{Frame{0x00, 0x00, 0x81, 0x0a, 0x8b}, -266, 0},
		{Frame{0x03, 0xe8, 0x00, 0x00, 0xeb}, 0, 1000},
		{Frame{0x00, 0x00, 0x80, 0x00, 0x80}, 0, 0},
		{Frame{0x01, 0x90, 0x80, 0x65, 0x76}, -101, 400},
		{Frame{0x00, 0x00, 0xff, 0xff, 0xfe}, -0x7fff, 0},
	}
	for _, test := range tests {
		r, err := Decode(test.frame, FrameSize)
		if err != nil {
			t.Errorf("Decode(%s) failed: %v", test.frame, err)
			continue
		}
		if r.Temperature != test.temperature || r.Humidity != test.humidity {
			t.Errorf("Decode(%s) = %s, %s; expected %s, %s", test.frame, r.Temperature, r.Humidity, test.temperature, test.humidity)
		}
		if !r.Time.IsZero() {
			t.Errorf("Decode(%s) set a time", test.frame)
		}
		// Decoding twice yields the same result.
		if again, _ := Decode(test.frame, FrameSize); again != r {
			t.Errorf("Decode(%s) is not deterministic: %v != %v", test.frame, again, r)
		}
	}
}

func TestDecode_signExample(t *testing.T) {
	r, err := Decode(Frame{0x00, 0x00, 0x81, 0x0a, 0x8b}, FrameSize)
	if err != nil {
		t.Fatal(err)
	}
	// 0x010a is 266 tenths.
	if r.Temperature.Celsius() != -26.6 {
		t.Errorf("unexpected temperature %s", r.Temperature)
	}
	r, err = Decode(Frame{0x00, 0x00, 0x81, 0x09, 0x8a}, FrameSize)
	if err != nil {
		t.Fatal(err)
	}
	if r.Temperature.Celsius() != -26.5 || r.Humidity.Percent() != 0 {
		t.Errorf("unexpected reading %s", r)
	}
}

func TestDecode_checksum(t *testing.T) {
	valid := Frame{0x02, 0x8c, 0x01, 0x11, 0xa0}
	for i := 0; i < FrameSize; i++ {
		for _, flip := range []byte{0x01, 0x80, 0xff} {
			f := valid
			f[i] ^= flip
			_, err := Decode(f, FrameSize)
			var cerr *ChecksumError
			if !errors.As(err, &cerr) {
				t.Fatalf("Decode(%s) expected a checksum error, got %v", f, err)
			}
			if cerr.Sum != f.Checksum() || cerr.Checksum != f[4] {
				t.Errorf("unexpected error content %+v for %s", cerr, f)
			}
		}
	}
	// Sum wraps at 8 bits.
	if _, err := Decode(Frame{0xff, 0xff, 0x7f, 0xff, 0x7c}, FrameSize); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestDecode_incomplete(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 6} {
		// The content is valid, only the count matters.
		_, err := Decode(Frame{0x02, 0x8c, 0x01, 0x11, 0xa0}, n)
		var ierr *IncompleteFrameError
		if !errors.As(err, &ierr) {
			t.Fatalf("Decode(n=%d) expected an incomplete frame error, got %v", n, err)
		}
		if ierr.Received != n {
			t.Errorf("Received = %d, expected %d", ierr.Received, n)
		}
	}
}

func TestEncode_roundTrip(t *testing.T) {
	for _, temp := range []Temperature{-400, -266, -1, 0, 1, 273, 800, 0x7fff, -0x7fff} {
		for _, hum := range []Humidity{0, 1, 656, 999, 1000, 0xffff} {
			f, err := Encode(temp, hum)
			if err != nil {
				t.Fatalf("Encode(%s, %s) failed: %v", temp, hum, err)
			}
			r, err := Decode(f, FrameSize)
			if err != nil {
				t.Fatalf("Decode(%s) failed: %v", f, err)
			}
			if r.Temperature != temp || r.Humidity != hum {
				t.Errorf("round trip of %s, %s returned %s", temp, hum, r)
			}
		}
	}
	if f, _ := Encode(273, 652); f != (Frame{0x02, 0x8c, 0x01, 0x11, 0xa0}) {
		t.Errorf("unexpected frame %s", f)
	}
	if _, err := Encode(-0x8000, 0); err == nil {
		t.Error("Encode accepted an out of range temperature")
	}
}

func TestUnits(t *testing.T) {
	if s := Temperature(-266).String(); s != "-26.6°C" {
		t.Error(s)
	}
	if s := Temperature(-5).String(); s != "-0.5°C" {
		t.Error(s)
	}
	if s := Humidity(656).String(); s != "65.6%rH" {
		t.Error(s)
	}
	if s := (Reading{Temperature: 273, Humidity: 656}).String(); s != "27.3°C 65.6%rH" {
		t.Error(s)
	}
	if s := (Frame{0x02, 0x8c, 0x01, 0x11, 0xa0}).String(); s != "0x02 0x8c 0x01 0x11 0xa0" {
		t.Error(s)
	}
	if expected := physic.ZeroCelsius + 27300*physic.MilliKelvin; Temperature(273).Physic() != expected {
		t.Errorf("expected %s, got %s", expected, Temperature(273).Physic())
	}
	if expected := physic.ZeroCelsius - 26600*physic.MilliKelvin; Temperature(-266).Physic() != expected {
		t.Errorf("expected %s, got %s", expected, Temperature(-266).Physic())
	}
	if expected := 65*physic.PercentRH + 6*physic.MilliRH; Humidity(656).Physic() != expected {
		t.Errorf("expected %s, got %s", expected, Humidity(656).Physic())
	}
}
