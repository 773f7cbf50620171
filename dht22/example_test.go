// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/dht22/dht22"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use gpioreg GPIO pin registry to find the pin the data line is wired to.
	p := gpioreg.ByName("GPIO4")
	if p == nil {
		log.Fatal("failed to find GPIO4")
	}

	// nil for default options or &dht22.DefaultOpts. Pin the timing engine to
	// a core to keep the scheduler from preempting it mid-frame.
	cpu := 3
	opts := dht22.DefaultOpts
	opts.CPU = &cpu
	d, err := dht22.New(p, &opts)
	if err != nil {
		log.Fatalf("failed to initialize DHT22: %v", err)
	}
	defer d.Halt()

	// Read temperature and humidity from the sensor. Reads within 2 seconds of
	// the last acquisition return the cached values.
	t, h, ok := d.ReadBoth(false)
	if !ok {
		log.Fatal("no valid reading")
	}
	fmt.Printf("%8s %9s\n", t, h)
}
