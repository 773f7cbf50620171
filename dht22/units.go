// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"fmt"
	"strconv"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Temperature is a temperature in tenths of a degree Celsius, the resolution
// the sensor reports.
type Temperature int16

// Celsius returns the temperature in degrees Celsius.
func (t Temperature) Celsius() float64 {
	return float64(t) / 10
}

// Physic converts the value to a periph temperature.
func (t Temperature) Physic() physic.Temperature {
	return physic.ZeroCelsius + (physic.Celsius/10)*physic.Temperature(t)
}

func (t Temperature) String() string {
	return decimal(int32(t)) + "°C"
}

// Humidity is a relative humidity in tenths of a percent.
type Humidity uint16

// Percent returns the relative humidity in percent.
func (h Humidity) Percent() float64 {
	return float64(h) / 10
}

// Physic converts the value to a periph relative humidity.
func (h Humidity) Physic() physic.RelativeHumidity {
	return physic.RelativeHumidity(h) * physic.MilliRH
}

func (h Humidity) String() string {
	return decimal(int32(h)) + "%rH"
}

// Reading is one decoded measurement.
type Reading struct {
	Temperature Temperature
	Humidity    Humidity
	// Time is when the frame was acquired. It is zero for a frame that was
	// only decoded.
	Time time.Time
}

func (r Reading) String() string {
	return fmt.Sprintf("%s %s", r.Temperature, r.Humidity)
}

// decimal formats v with one implied decimal digit.
func decimal(v int32) string {
	s := ""
	if v < 0 {
		s = "-"
		v = -v
	}
	return s + strconv.Itoa(int(v/10)) + "." + strconv.Itoa(int(v%10))
}
