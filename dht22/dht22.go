// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts holds the configuration options for the device.
type Opts struct {
	// MinInterval is the minimum time between two acquisitions. Reads issued
	// sooner return the cached reading. Default is 2s, the sampling period of
	// the sensor. Leave 0 to use default.
	MinInterval time.Duration
	// Wait is how long an acquisition is given to complete before the frame
	// is decoded. A frame lasts about 5ms. Default is 20ms. Leave 0 to use
	// default.
	Wait time.Duration
	// CPU the timing engine is bound to. Leave nil to leave it unbound. Only
	// used by New.
	CPU *int
	// Timing of the generated pulses. Only used by New. Leave zero to use
	// DefaultTiming.
	Timing Timing
	// Logger receives acquisition failures. Default is the logrus standard
	// logger.
	Logger logrus.FieldLogger
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	MinInterval: 2 * time.Second,
	Wait:        20 * time.Millisecond,
	Timing:      DefaultTiming,
}

// Stats counts acquisition outcomes since the device was created.
type Stats struct {
	Acquisitions   uint64
	Successes      uint64
	Incomplete     uint64
	ChecksumErrors uint64
	TriggerErrors  uint64
	// Discarded is the number of bytes received outside their acquisition.
	Discarded uint64
	// Dropped is the number of bytes the engine could not deliver, when the
	// engine reports it.
	Dropped uint64
	// Faults is the number of acquisitions the engine aborted on a pin error,
	// when the engine reports it.
	Faults uint64
}

// Dev is a handle to a DHT22 sensor.
//
// Failed acquisitions never surface as errors from the Read methods: they are
// logged, counted in Stats and the previous reading is served instead.
type Dev struct {
	e    Engine
	opts Opts
	log  logrus.FieldLogger

	mu    sync.Mutex
	asm   assembler
	seq   uint32
	last  Reading
	valid bool
	stats Stats

	smu      sync.Mutex
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New returns a device sampling the sensor connected to p with a PinEngine.
// The opts can be nil.
func New(p gpio.PinIO, opts *Opts) (*Dev, error) {
	o := normalize(opts)
	e, err := NewPinEngine(p, &EngineOpts{Timing: o.Timing, CPU: o.CPU})
	if err != nil {
		return nil, err
	}
	return newDev(e, o), nil
}

// NewWithEngine returns a device driven by an arbitrary Engine, for example
// one backed by a microcontroller's programmable I/O. The Dev owns e and
// halts it in Halt. The opts can be nil.
func NewWithEngine(e Engine, opts *Opts) (*Dev, error) {
	if e == nil {
		return nil, errors.New("dht22: nil engine")
	}
	return newDev(e, normalize(opts)), nil
}

func normalize(opts *Opts) Opts {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.MinInterval <= 0 {
		o.MinInterval = DefaultOpts.MinInterval
	}
	if o.Wait <= 0 {
		o.Wait = DefaultOpts.Wait
	}
	if o.Timing == (Timing{}) {
		o.Timing = DefaultTiming
	}
	return o
}

func newDev(e Engine, o Opts) *Dev {
	d := &Dev{e: e, opts: o, log: o.Logger}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	d.log = d.log.WithField("dev", e.String())
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("dht22{%s}", d.e)
}

// Read returns the last valid reading, acquiring a new one first when force
// is set or the cached one is older than MinInterval. ok is false until an
// acquisition succeeded.
func (d *Dev) Read(force bool) (r Reading, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if force || !d.valid || now().Sub(d.last.Time) > d.opts.MinInterval {
		d.acquire()
	}
	return d.last, d.valid
}

// ReadTemperature is Read for the temperature only.
func (d *Dev) ReadTemperature(force bool) (Temperature, bool) {
	r, ok := d.Read(force)
	return r.Temperature, ok
}

// ReadHumidity is Read for the humidity only.
func (d *Dev) ReadHumidity(force bool) (Humidity, bool) {
	r, ok := d.Read(force)
	return r.Humidity, ok
}

// ReadBoth is Read without the acquisition time.
func (d *Dev) ReadBoth(force bool) (Temperature, Humidity, bool) {
	r, ok := d.Read(force)
	return r.Temperature, r.Humidity, ok
}

// LastReading returns the cached reading without touching the sensor.
func (d *Dev) LastReading() (Reading, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.valid
}

// Stats returns the acquisition counters.
func (d *Dev) Stats() Stats {
	d.mu.Lock()
	s := d.stats
	s.Discarded = d.asm.discarded
	d.mu.Unlock()
	if c, ok := d.e.(interface{ Dropped() uint64 }); ok {
		s.Dropped = c.Dropped()
	}
	if c, ok := d.e.(interface{ Faults() uint64 }); ok {
		s.Faults = c.Faults()
	}
	return s
}

// acquire runs one trigger, wait, decode cycle. d.mu must be held.
func (d *Dev) acquire() {
	d.stats.Acquisitions++
	d.seq++
	d.asm.reset(d.seq)
	// Leftovers of a previous acquisition that completed late.
	d.asm.drain(d.e.Events())
	if err := d.e.Trigger(d.seq); err != nil {
		d.stats.TriggerErrors++
		d.log.WithError(err).Warn("dht22: failed to trigger acquisition")
		return
	}
	// The engine gives no completion signal; the wait is a fixed budget.
	sleep(d.opts.Wait)
	d.asm.drain(d.e.Events())
	if d.asm.n != FrameSize {
		d.stats.Incomplete++
		d.log.WithFields(logrus.Fields{"seq": d.seq, "received": d.asm.n}).Warn("dht22: didn't receive enough data")
		return
	}
	r, err := Decode(d.asm.frame, d.asm.n)
	if err != nil {
		d.stats.ChecksumErrors++
		d.log.WithFields(logrus.Fields{"seq": d.seq, "frame": d.asm.frame}).WithError(err).Warn("dht22: data validation error")
		return
	}
	r.Time = now()
	d.last = r
	d.valid = true
	d.stats.Successes++
}

// Sense implements physic.SenseEnv. It follows the same MinInterval policy as
// Read and returns ErrUnavailable until an acquisition succeeded. Pressure is
// always 0.
func (d *Dev) Sense(e *physic.Env) error {
	r, ok := d.Read(false)
	if !ok {
		return ErrUnavailable
	}
	e.Temperature = r.Temperature.Physic()
	e.Pressure = 0
	e.Humidity = r.Humidity.Physic()
	return nil
}

// SenseContinuous implements physic.SenseEnv. It acquires every interval,
// which can't be shorter than MinInterval, and only sends fresh readings. Call
// Halt to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < d.opts.MinInterval {
		return nil, fmt.Errorf("dht22: invalid interval %s, minimum %s", interval, d.opts.MinInterval)
	}
	d.smu.Lock()
	defer d.smu.Unlock()
	if d.shutdown != nil {
		return nil, errors.New("dht22: sense continuous already running")
	}
	d.shutdown = make(chan struct{})
	stop := d.shutdown
	ch := make(chan physic.Env, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var prev time.Time
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r, ok := d.Read(true)
				if !ok || r.Time.Equal(prev) {
					continue
				}
				prev = r.Time
				select {
				case ch <- physic.Env{Temperature: r.Temperature.Physic(), Humidity: r.Humidity.Physic()}:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Celsius / 10
	e.Pressure = 0
	e.Humidity = physic.MilliRH
}

// Halt stops SenseContinuous and the timing engine. The device can't be used
// afterward.
func (d *Dev) Halt() error {
	d.smu.Lock()
	if d.shutdown != nil {
		close(d.shutdown)
		d.wg.Wait()
		d.shutdown = nil
	}
	d.smu.Unlock()
	return d.e.Halt()
}

var (
	sleep = time.Sleep
	now   = time.Now
)

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
