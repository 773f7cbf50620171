// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the configuration of the dht22 command.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/dht22/dht22"
)

type Config struct {
	Sensor  SensorConfig  `yaml:"sensor"`
	Poll    PollConfig    `yaml:"poll"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Console ConsoleConfig `yaml:"console"`
}

// ---- SENSOR ----

type SensorConfig struct {
	// Pin is the periph name of the GPIO the data line is wired to.
	Pin string `yaml:"pin"`
	// CPU the timing engine is bound to (optional).
	CPU           *int `yaml:"cpu"`
	MinIntervalMs int  `yaml:"min_interval_ms"`
	WaitMs        int  `yaml:"wait_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	Force      bool `yaml:"force"`
}

// ---- METRICS ----

type MetricsConfig struct {
	// Listen is the HTTP address serving Prometheus metrics. Empty disables
	// the endpoint.
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// ---- CONSOLE ----

type ConsoleConfig struct {
	// Enabled defaults to whether stdout is a terminal.
	Enabled *bool `yaml:"enabled"`
	Width   int   `yaml:"width"`
}

const (
	defaultPin         = "GPIO4"
	defaultPollMs      = 2000
	defaultMetricsPath = "/metrics"
	defaultLogLevel    = "info"
	defaultWidth       = 20
)

// Override modifies a decoded configuration before defaults and validation,
// typically from command line flags.
type Override func(*Config)

// Load reads, defaults and validates the file at path.
func Load(path string, overrides ...Override) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	cfg, err := Parse(b, overrides...)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document, rejecting unknown keys, then applies
// overrides, defaults, Validate and Normalize. An empty document yields the
// defaults.
func Parse(b []byte, overrides ...Override) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode yaml")
	}
	for _, o := range overrides {
		o(cfg)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sensor.Pin == "" {
		cfg.Sensor.Pin = defaultPin
	}
	if cfg.Sensor.MinIntervalMs == 0 {
		cfg.Sensor.MinIntervalMs = int(dht22.DefaultOpts.MinInterval / time.Millisecond)
	}
	if cfg.Sensor.WaitMs == 0 {
		cfg.Sensor.WaitMs = int(dht22.DefaultOpts.Wait / time.Millisecond)
	}
	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = defaultPollMs
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Console.Width == 0 {
		cfg.Console.Width = defaultWidth
	}
}

// Opts converts the sensor section to driver options.
func (s SensorConfig) Opts() dht22.Opts {
	o := dht22.DefaultOpts
	o.MinInterval = time.Duration(s.MinIntervalMs) * time.Millisecond
	o.Wait = time.Duration(s.WaitMs) * time.Millisecond
	if s.CPU != nil {
		cpu := *s.CPU
		o.CPU = &cpu
	}
	return o
}

// Interval returns the polling period.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}
