// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

// assembler rebuilds the frame of the current acquisition from byte-ready
// events. Events from another acquisition, or beyond FrameSize, are counted
// and ignored.
type assembler struct {
	seq       uint32
	frame     Frame
	n         int
	discarded uint64
}

func (a *assembler) reset(seq uint32) {
	a.seq = seq
	a.frame = Frame{}
	a.n = 0
}

func (a *assembler) handle(ev Event) {
	if ev.Seq != a.seq || a.n == FrameSize {
		a.discarded++
		return
	}
	a.frame[a.n] = ev.Value
	a.n++
}

// drain handles every queued event without blocking.
func (a *assembler) drain(events <-chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.handle(ev)
		default:
			return
		}
	}
}
