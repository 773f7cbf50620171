// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Event is emitted by an Engine each time it completed a byte.
type Event struct {
	// Seq is the sequence number passed to the Trigger call that started the
	// acquisition.
	Seq   uint32
	Value byte
}

// Engine samples the data line on its own, independently of the caller.
//
// Trigger starts one acquisition and returns immediately. The engine then
// sends one Event per received byte on the channel returned by Events, in
// order. An engine facing a silent line may never send anything; bounding the
// wait is the caller's job.
type Engine interface {
	conn.Resource
	Trigger(seq uint32) error
	Events() <-chan Event
}

// Timing describes the pulse train generated and sampled by PinEngine.
type Timing struct {
	// Cycle is the engine time unit.
	Cycle time.Duration
	// StartCycles is how long the line is held low to wake the sensor up.
	StartCycles int
	// SampleCycles is the delay between a rising edge and the sampling of the
	// line. A 0 bit has already ended by then, a 1 bit has not.
	SampleCycles int
}

// DefaultTiming holds 10µs cycles, a 0.9ms start pulse and sampling 30µs
// after each rising edge.
var DefaultTiming = Timing{
	Cycle:        10 * time.Microsecond,
	StartCycles:  90,
	SampleCycles: 3,
}

// EngineOpts holds the configuration options for a PinEngine.
type EngineOpts struct {
	Timing Timing
	// CPU is the processor the engine thread is bound to. Leave nil to leave
	// the thread to the OS scheduler. Binding is only supported on linux.
	CPU *int
	// Clock returns the engine's monotonic time. Leave nil to use the system
	// clock.
	Clock func() time.Duration
}

// DefaultEngineOpts holds the default configuration options for a PinEngine.
var DefaultEngineOpts = EngineOpts{
	Timing: DefaultTiming,
}

const (
	// Depth of the trigger queue.
	triggerQueueSize = 4
	eventQueueSize   = 4 * FrameSize
)

// PinEngine is an Engine that bit-bangs the protocol on a GPIO pin.
//
// The sampling loop runs on a goroutine locked to an OS thread and spins on
// the pin, so it keeps a whole core busy for the ~5ms an acquisition lasts.
// Waits on line transitions are unbounded: with no sensor attached the engine
// stalls until Halt is called.
type PinEngine struct {
	pin    gpio.PinIO
	timing Timing
	clock  func() time.Duration

	trigger chan uint32
	events  chan Event
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	halted  atomic.Bool
	dropped atomic.Uint64
	faults  atomic.Uint64
}

// NewPinEngine idles the pin high and starts the engine goroutine. The opts
// can be nil.
func NewPinEngine(p gpio.PinIO, opts *EngineOpts) (*PinEngine, error) {
	if p == nil {
		return nil, errors.New("dht22: nil pin")
	}
	if opts == nil {
		opts = &DefaultEngineOpts
	}
	t := opts.Timing
	if t.Cycle <= 0 || t.StartCycles <= 0 || t.SampleCycles < 0 {
		return nil, fmt.Errorf("dht22: invalid timing %+v", t)
	}
	clock := opts.Clock
	if clock == nil {
		start := time.Now()
		clock = func() time.Duration { return time.Since(start) }
	}
	if err := p.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("dht22: failed to idle %s: %w", p, err)
	}
	e := &PinEngine{
		pin:     p,
		timing:  t,
		clock:   clock,
		trigger: make(chan uint32, triggerQueueSize),
		events:  make(chan Event, eventQueueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	started := make(chan error)
	go e.run(opts.CPU, started)
	if err := <-started; err != nil {
		return nil, err
	}
	return e, nil
}

func (e *PinEngine) String() string {
	return fmt.Sprintf("dht22.PinEngine{%s}", e.pin)
}

// Halt stops the engine, aborting a stalled acquisition, and leaves the line
// idle high.
func (e *PinEngine) Halt() error {
	e.once.Do(func() {
		e.halted.Store(true)
		close(e.stop)
		<-e.done
	})
	return e.pin.Out(gpio.High)
}

// Trigger implements Engine.
func (e *PinEngine) Trigger(seq uint32) error {
	if e.halted.Load() {
		return ErrHalted
	}
	select {
	case e.trigger <- seq:
		return nil
	default:
		return ErrEngineBusy
	}
}

// Events implements Engine.
func (e *PinEngine) Events() <-chan Event {
	return e.events
}

// Dropped returns the number of bytes lost because nobody drained Events.
func (e *PinEngine) Dropped() uint64 {
	return e.dropped.Load()
}

// Faults returns the number of acquisitions aborted by a pin error.
func (e *PinEngine) Faults() uint64 {
	return e.faults.Load()
}

func (e *PinEngine) run(cpu *int, started chan<- error) {
	defer close(e.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if cpu != nil {
		if err := bindCPU(*cpu); err != nil {
			started <- fmt.Errorf("dht22: failed to bind engine to CPU %d: %w", *cpu, err)
			return
		}
	}
	close(started)
	for {
		select {
		case <-e.stop:
			return
		case seq := <-e.trigger:
			if err := e.acquire(seq); err != nil {
				if errors.Is(err, ErrHalted) {
					return
				}
				e.faults.Add(1)
				_ = e.pin.Out(gpio.High)
			}
		}
	}
}

// acquire runs one start/acknowledge/40 bits sequence.
func (e *PinEngine) acquire(seq uint32) error {
	if err := e.pin.Out(gpio.Low); err != nil {
		return err
	}
	e.delay(e.timing.StartCycles)
	if err := e.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return err
	}
	// Acknowledge: the line floats high, then the sensor pulls it low and
	// high for 80µs each.
	for _, l := range [...]gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if !e.waitFor(l) {
			return ErrHalted
		}
	}
	for i := 0; i < FrameSize; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			if !e.waitFor(gpio.Low) || !e.waitFor(gpio.High) {
				return ErrHalted
			}
			e.delay(e.timing.SampleCycles)
			b <<= 1
			if e.pin.Read() == gpio.High {
				b |= 1
			}
		}
		e.emit(Event{Seq: seq, Value: b})
	}
	return e.pin.Out(gpio.High)
}

// waitFor spins until the line reads l. It returns false if the engine was
// halted meanwhile.
func (e *PinEngine) waitFor(l gpio.Level) bool {
	for e.pin.Read() != l {
		if e.halted.Load() {
			return false
		}
	}
	return true
}

// delay spins for n cycles. time.Sleep is far too coarse for this.
func (e *PinEngine) delay(n int) {
	d := time.Duration(n) * e.timing.Cycle
	for start := e.clock(); e.clock()-start < d; {
	}
}

// emit must never block the sampling loop.
func (e *PinEngine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.dropped.Add(1)
	}
}

var bindCPU = setAffinity

var _ Engine = &PinEngine{}
