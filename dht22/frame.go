// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/dht22/common"
)

// FrameSize is the number of bytes the sensor sends per acquisition.
const FrameSize = 5

const (
	signBit       byte = 0x80
	magnitudeMask byte = 0x7f

	maxMagnitude = int(magnitudeMask)<<8 | 0xff
)

// Frame is the raw payload of one acquisition.
type Frame [FrameSize]byte

// Checksum returns the checksum computed over the four data bytes.
func (f Frame) Checksum() byte {
	return common.Sum8(f[:4])
}

func (f Frame) String() string {
	return fmt.Sprintf("% #x", f[:])
}

// Decode validates a frame and converts it to physical values. n is the
// number of bytes actually assembled into f; a frame is only decoded when all
// of them arrived. It returns an *IncompleteFrameError or a *ChecksumError on
// failure.
//
// Decode is a pure function, Reading.Time is left zero.
func Decode(f Frame, n int) (Reading, error) {
	if n != FrameSize {
		return Reading{}, &IncompleteFrameError{Received: n}
	}
	if sum := f.Checksum(); sum != f[4] {
		return Reading{}, &ChecksumError{Sum: sum, Checksum: f[4]}
	}
	h := uint16(f[0])<<8 | uint16(f[1])
	// Sign and magnitude, not two's complement.
	t := Temperature(uint16(f[2]&magnitudeMask)<<8 | uint16(f[3]))
	if f[2]&signBit != 0 {
		t = -t
	}
	return Reading{Temperature: t, Humidity: Humidity(h)}, nil
}

// Encode builds the frame the sensor would send for the given values,
// checksum included.
func Encode(t Temperature, h Humidity) (Frame, error) {
	m := int(t)
	var sign byte
	if m < 0 {
		m = -m
		sign = signBit
	}
	if m > maxMagnitude {
		return Frame{}, errors.New("dht22: temperature out of range")
	}
	f := Frame{byte(h >> 8), byte(h), sign | byte(m>>8), byte(m)}
	f[4] = f.Checksum()
	return f, nil
}
