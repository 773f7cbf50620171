// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package dht22

import "errors"

func setAffinity(cpu int) error {
	return errors.New("not supported on this OS")
}
