// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import "time"

// SetClock replaces the functions used to wait for and timestamp
// acquisitions. A nil argument keeps the current one. Call the returned
// function to restore them.
func SetClock(s func(time.Duration), n func() time.Time) func() {
	oldSleep, oldNow := sleep, now
	if s != nil {
		sleep = s
	}
	if n != nil {
		now = n
	}
	return func() { sleep, now = oldSleep, oldNow }
}
