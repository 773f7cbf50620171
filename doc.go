// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the DHT22 driver and the packages built
// around it.
//
// The driver itself lives in package dht22. Package common holds the frame
// checksum, screen1d renders readings on a terminal and cmd/dht22 polls a
// sensor and exposes it to Prometheus.
package devices
