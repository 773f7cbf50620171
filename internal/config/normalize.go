// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import "strings"

// Normalize applies post-validation normalization.
// It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Sensor.Pin = strings.TrimSpace(cfg.Sensor.Pin)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	// Polling faster than the sensor only serves the cache again.
	if !cfg.Poll.Force && cfg.Poll.IntervalMs < cfg.Sensor.MinIntervalMs {
		cfg.Poll.IntervalMs = cfg.Sensor.MinIntervalMs
	}
}
