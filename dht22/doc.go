// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht22 reads the AOSONG DHT22 (AM2302) temperature/humidity sensor
// over its proprietary single-wire protocol.
//
// The host pulls the data line low to start a measurement, then releases it.
// The sensor answers with an 80µs low/80µs high acknowledgment followed by 40
// bits, most significant first. Every bit starts with a ~50µs low; the high
// pulse that follows lasts 26-28µs for a 0 and ~70µs for a 1. The 40 bits form
// a 5 byte frame:
//
//	[0] humidity high  [1] humidity low
//	[2] temperature high, bit 7 is the sign  [3] temperature low
//	[4] checksum, the low 8 bits of the sum of bytes 0-3
//
// Both values are sent in tenths of a unit.
//
// Sampling runs on a dedicated timing engine, a goroutine locked to its own OS
// thread that busy-waits on the line. It hands each completed byte to the
// device over a channel. Dev sleeps a fixed wait after triggering the engine
// and decodes whatever arrived, keeping the last good reading when the frame is
// short or corrupt.
//
// The sensor must not be polled more than once every 2 seconds; Dev enforces
// this by serving the cached reading in between.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/Digital+humidity+and+temperature+sensor+AM2302.pdf
package dht22
