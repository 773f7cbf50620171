// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22test

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Sensor timings, from the datasheet.
const (
	// MinStart is the shortest low pulse the sensor responds to.
	MinStart = 800 * time.Microsecond

	releaseHigh = 30 * time.Microsecond
	ackLow      = 80 * time.Microsecond
	ackHigh     = 80 * time.Microsecond
	bitLow      = 50 * time.Microsecond
	zeroHigh    = 26 * time.Microsecond
	oneHigh     = 70 * time.Microsecond
)

// Line implements gpio.PinIO and simulates a DHT22 answering on its data
// line.
//
// Time is virtual: every Read, Out, In and Now call advances it by Step, so a
// busy-waiting engine given Now as its clock sees the waveform exactly as on
// hardware, whatever the host scheduling.
type Line struct {
	gpiotest.Pin
	// Frames holds the bytes sent after each successive start pulse. A short
	// entry stops mid-frame; no entry leaves the line pulled high, as with
	// no sensor attached.
	Frames [][]byte
	// Step is the virtual time taken by each access. Default is 1µs.
	Step time.Duration

	mu       sync.Mutex
	now      time.Duration
	output   bool
	level    gpio.Level
	lowSince time.Duration
	start    time.Duration
	wave     []pulse
	starts   int
}

type pulse struct {
	d time.Duration
	l gpio.Level
}

// Now returns the virtual time.
func (l *Line) Now() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick()
}

// Starts returns the number of valid start pulses seen so far.
func (l *Line) Starts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts
}

// Out implements gpio.PinOut.
func (l *Line) Out(level gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.tick()
	if level == gpio.Low && (!l.output || l.level == gpio.High) {
		l.lowSince = t
	}
	l.output = true
	l.level = level
	l.wave = nil
	return nil
}

// In implements gpio.PinIn. Releasing the line after a long enough low pulse
// makes the sensor answer with the next frame.
func (l *Line) In(pull gpio.Pull, edge gpio.Edge) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.tick()
	if l.output && l.level == gpio.Low && t-l.lowSince >= MinStart {
		l.wave = nil
		if l.starts < len(l.Frames) {
			l.wave = waveform(l.Frames[l.starts])
		}
		l.starts++
		l.start = t
	}
	l.output = false
	return nil
}

// Read implements gpio.PinIn.
func (l *Line) Read() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.tick()
	if l.output {
		return l.level
	}
	// Walk the waveform; past its end the pull-up wins.
	elapsed := t - l.start
	for _, p := range l.wave {
		if elapsed < p.d {
			return p.l
		}
		elapsed -= p.d
	}
	return gpio.High
}

// WaitForEdge implements gpio.PinIn. Edges are not simulated.
func (l *Line) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (l *Line) tick() time.Duration {
	step := l.Step
	if step <= 0 {
		step = time.Microsecond
	}
	l.now += step
	return l.now
}

// waveform returns the line levels the sensor produces for b, starting when
// the host releases the line.
func waveform(b []byte) []pulse {
	w := []pulse{{releaseHigh, gpio.High}, {ackLow, gpio.Low}, {ackHigh, gpio.High}}
	for _, v := range b {
		for i := 7; i >= 0; i-- {
			h := zeroHigh
			if v&(1<<uint(i)) != 0 {
				h = oneHigh
			}
			w = append(w, pulse{bitLow, gpio.Low}, pulse{h, gpio.High})
		}
	}
	return append(w, pulse{bitLow, gpio.Low})
}

var _ gpio.PinIO = &Line{}
