// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht22test is meant to be used to test drivers over a fake DHT22
// timing engine or data line.
package dht22test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/dht22/dht22"
)

// Playback implements dht22.Engine and plays back recorded frames.
//
// Each Trigger call emits the bytes of the next entry of Frames before
// returning, so they are queued by the time the device decodes. A short entry
// models a sensor that stopped mid-frame, an empty one a missing sensor.
type Playback struct {
	sync.Mutex
	Frames [][]byte
	Count  int
	// DontPanic makes Trigger fail with dht22.ErrEngineBusy instead of
	// panicking once Frames is exhausted.
	DontPanic bool

	events chan dht22.Event
	seq    uint32
	halted bool
}

func (p *Playback) String() string {
	return "playback"
}

// Halt implements conn.Resource.
func (p *Playback) Halt() error {
	p.Lock()
	defer p.Unlock()
	p.halted = true
	return nil
}

// Close verifies that all the expected triggers were done.
func (p *Playback) Close() error {
	p.Lock()
	defer p.Unlock()
	if len(p.Frames) != p.Count {
		return errorf("expected playback to be empty: %d/%d triggers", p.Count, len(p.Frames))
	}
	return nil
}

// Trigger implements dht22.Engine.
func (p *Playback) Trigger(seq uint32) error {
	p.Lock()
	defer p.Unlock()
	if p.halted {
		return dht22.ErrHalted
	}
	if p.Count >= len(p.Frames) {
		if p.DontPanic {
			return dht22.ErrEngineBusy
		}
		panic(errorf("unexpected Trigger() #%d", p.Count))
	}
	ch := p.eventsLocked()
	for _, b := range p.Frames[p.Count] {
		ch <- dht22.Event{Seq: seq, Value: b}
	}
	p.seq = seq
	p.Count++
	return nil
}

// Events implements dht22.Engine.
func (p *Playback) Events() <-chan dht22.Event {
	p.Lock()
	defer p.Unlock()
	return p.eventsLocked()
}

// Late queues bytes tagged with the last triggered sequence, as an engine
// finishing a frame after the device gave up on it would.
func (p *Playback) Late(b ...byte) {
	p.Lock()
	defer p.Unlock()
	ch := p.eventsLocked()
	for _, v := range b {
		ch <- dht22.Event{Seq: p.seq, Value: v}
	}
}

func (p *Playback) eventsLocked() chan dht22.Event {
	if p.events == nil {
		p.events = make(chan dht22.Event, 64)
	}
	return p.events
}

func errorf(format string, a ...interface{}) error {
	return errors.New("dht22test: " + fmt.Sprintf(format, a...))
}

var _ dht22.Engine = &Playback{}
