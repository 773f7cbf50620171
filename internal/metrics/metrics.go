// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metrics exposes a DHT22 device to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GermanBionicSystems/dht22/dht22"
)

// Source is the part of *dht22.Dev the collector reads. Collecting never
// triggers an acquisition.
type Source interface {
	LastReading() (dht22.Reading, bool)
	Stats() dht22.Stats
}

// Collector implements prometheus.Collector.
type Collector struct {
	src Source

	temperature *prometheus.Desc
	humidity    *prometheus.Desc
	lastSuccess *prometheus.Desc
	outcomes    *prometheus.Desc
	discarded   *prometheus.Desc
	dropped     *prometheus.Desc
	faults      *prometheus.Desc
}

// NewCollector returns a collector for src. constLabels are attached to every
// metric, typically the sensor location.
func NewCollector(src Source, constLabels prometheus.Labels) *Collector {
	return &Collector{
		src: src,
		temperature: prometheus.NewDesc("dht22_temperature_celsius",
			"Last valid temperature (units: degrees Celsius)", nil, constLabels),
		humidity: prometheus.NewDesc("dht22_humidity_percent",
			"Last valid relative humidity (units: %)", nil, constLabels),
		lastSuccess: prometheus.NewDesc("dht22_last_success_timestamp_seconds",
			"Time of the last valid acquisition", nil, constLabels),
		outcomes: prometheus.NewDesc("dht22_acquisitions_total",
			"Acquisitions by outcome", []string{"outcome"}, constLabels),
		discarded: prometheus.NewDesc("dht22_discarded_bytes_total",
			"Bytes received outside of their acquisition window", nil, constLabels),
		dropped: prometheus.NewDesc("dht22_dropped_bytes_total",
			"Bytes the timing engine could not deliver", nil, constLabels),
		faults: prometheus.NewDesc("dht22_engine_faults_total",
			"Acquisitions the timing engine aborted on a pin error", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.temperature
	ch <- c.humidity
	ch <- c.lastSuccess
	ch <- c.outcomes
	ch <- c.discarded
	ch <- c.dropped
	ch <- c.faults
}

// Collect implements prometheus.Collector. The gauges are only reported once
// a reading exists, so that a dead sensor shows up as missing data rather
// than zeros.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if r, ok := c.src.LastReading(); ok {
		ch <- prometheus.MustNewConstMetric(c.temperature, prometheus.GaugeValue, r.Temperature.Celsius())
		ch <- prometheus.MustNewConstMetric(c.humidity, prometheus.GaugeValue, r.Humidity.Percent())
		ch <- prometheus.MustNewConstMetric(c.lastSuccess, prometheus.GaugeValue, float64(r.Time.UnixNano())/1e9)
	}
	s := c.src.Stats()
	for _, o := range []struct {
		name string
		v    uint64
	}{
		{"ok", s.Successes},
		{"incomplete", s.Incomplete},
		{"checksum", s.ChecksumErrors},
		{"trigger_error", s.TriggerErrors},
	} {
		ch <- prometheus.MustNewConstMetric(c.outcomes, prometheus.CounterValue, float64(o.v), o.name)
	}
	ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(s.Discarded))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(c.faults, prometheus.CounterValue, float64(s.Faults))
}

var _ prometheus.Collector = &Collector{}
