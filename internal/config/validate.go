// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Lower bound for min_interval_ms. The datasheet asks for 2s between reads.
const minSensorIntervalMs = 1000

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	s := cfg.Sensor
	if strings.TrimSpace(s.Pin) == "" {
		return fmt.Errorf("sensor: pin is required")
	}
	if s.CPU != nil && *s.CPU < 0 {
		return fmt.Errorf("sensor: cpu must be >= 0, got %d", *s.CPU)
	}
	if s.MinIntervalMs < minSensorIntervalMs {
		return fmt.Errorf("sensor: min_interval_ms must be >= %d, got %d", minSensorIntervalMs, s.MinIntervalMs)
	}
	// A frame lasts ~5ms after a ~1ms start pulse.
	if s.WaitMs < 6 || s.WaitMs >= s.MinIntervalMs {
		return fmt.Errorf("sensor: wait_ms must be in [6, min_interval_ms), got %d", s.WaitMs)
	}

	if cfg.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll: interval_ms must be > 0, got %d", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.Force && cfg.Poll.IntervalMs < s.MinIntervalMs {
		return fmt.Errorf("poll: forced polling every %dms is faster than min_interval_ms", cfg.Poll.IntervalMs)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics: path must start with '/', got %q", cfg.Metrics.Path)
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if cfg.Console.Width < 1 || cfg.Console.Width > 200 {
		return fmt.Errorf("console: width must be in [1, 200], got %d", cfg.Console.Width)
	}
	return nil
}
