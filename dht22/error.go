// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned by Sense until one acquisition succeeded.
	ErrUnavailable = errors.New("dht22: no valid reading acquired yet")
	// ErrEngineBusy is returned by Engine.Trigger when no more acquisitions
	// can be queued, usually because the engine is stalled on a dead line.
	ErrEngineBusy = errors.New("dht22: timing engine busy")
	// ErrHalted is returned by an Engine once Halt was called.
	ErrHalted = errors.New("dht22: halted")
)

// IncompleteFrameError is returned when fewer than FrameSize bytes were
// assembled within the wait budget. An absent sensor shows up this way.
type IncompleteFrameError struct {
	Received int
}

func (e *IncompleteFrameError) Error() string {
	return fmt.Sprintf("dht22: incomplete frame, received %d of %d bytes", e.Received, FrameSize)
}

// ChecksumError is returned when a complete frame fails validation.
type ChecksumError struct {
	// Sum is the checksum computed over the data bytes.
	Sum byte
	// Checksum is the value the sensor sent.
	Checksum byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("dht22: checksum mismatch, computed 0x%02x but sensor sent 0x%02x", e.Sum, e.Checksum)
}
