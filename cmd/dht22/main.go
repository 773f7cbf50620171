// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dht22 polls a DHT22 sensor, logs its readings and exposes them to
// Prometheus.
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/dht22/dht22"
	"github.com/GermanBionicSystems/dht22/internal/config"
	"github.com/GermanBionicSystems/dht22/internal/metrics"
	"github.com/GermanBionicSystems/dht22/screen1d"
)

// CLI args
var (
	configPath = flag.String("config", "", "path to the YAML configuration, defaults apply when empty")
	pinName    = flag.String("pin", "", "GPIO the data line is wired to, overrides the configuration")
	listenAddr = flag.String("listen-address", "", "address serving /metrics, overrides the configuration")
)

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(colorable.NewColorableStdout())
}

func main() {
	flag.Parse()
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}

func mainImpl() error {
	cfg, err := loadConfig(*configPath, *pinName, *listenAddr)
	if err != nil {
		return err
	}
	lvl, _ := log.ParseLevel(cfg.Log.Level)
	log.SetLevel(lvl)
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	gauge, logOut := outputs(cfg.Console, tty, colorable.NewColorableStdout(), colorable.NewColorableStderr())
	log.SetOutput(logOut)

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}
	p := gpioreg.ByName(cfg.Sensor.Pin)
	if p == nil {
		return errors.Errorf("failed to find pin %s", cfg.Sensor.Pin)
	}
	opts := cfg.Sensor.Opts()
	opts.Logger = log.WithField("pin", p.Name())
	d, err := dht22.New(p, &opts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize DHT22")
	}
	defer d.Halt()
	log.Infof("started %s", d)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics, d)
		defer srv.Close()
	}

	if gauge != nil {
		defer gauge.Halt()
	}

	poll(ctx, d, cfg.Poll, gauge)
	return nil
}

// loadConfig reads the configuration at path, or the defaults when path is
// empty. Non-empty pin and listen override the file and are validated with it.
func loadConfig(path, pin, listen string) (*config.Config, error) {
	var overrides []config.Override
	if pin != "" {
		overrides = append(overrides, func(c *config.Config) { c.Sensor.Pin = pin })
	}
	if listen != "" {
		overrides = append(overrides, func(c *config.Config) { c.Metrics.Listen = listen })
	}
	if path == "" {
		return config.Parse(nil, overrides...)
	}
	return config.Load(path, overrides...)
}

// outputs returns the console gauge, nil when disabled, and the writer logs go
// to. The gauge redraws its line in place so logs move to stderr while it is
// shown. Enabled defaults to tty.
func outputs(c config.ConsoleConfig, tty bool, stdout, stderr io.Writer) (*screen1d.Dev, io.Writer) {
	show := tty
	if c.Enabled != nil {
		show = *c.Enabled
	}
	if !show {
		return nil, stdout
	}
	return screen1d.New(&screen1d.Opts{X: c.Width, W: stdout}), stderr
}

func serveMetrics(c config.MetricsConfig, d *dht22.Dev) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		metrics.NewCollector(d, nil),
		collectors.NewGoCollector(),
		collectors.NewBuildInfoCollector(),
	)
	mux := http.NewServeMux()
	mux.Handle(c.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	}))
	srv := &http.Server{Addr: c.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server failed: %s", err)
		}
	}()
	log.Infof("serving metrics on %s%s", c.Listen, c.Path)
	return srv
}

// poll reads the sensor until ctx is done. Failures are logged by the driver;
// the loop keeps serving the last good reading.
func poll(ctx context.Context, d *dht22.Dev, c config.PollConfig, gauge *screen1d.Dev) {
	ticker := time.NewTicker(c.Interval())
	defer ticker.Stop()
	for {
		r, ok := d.Read(c.Force)
		if ok {
			log.WithFields(log.Fields{
				"temperature": r.Temperature.Celsius(),
				"humidity":    r.Humidity.Percent(),
				"age":         time.Since(r.Time).Round(time.Millisecond),
			}).Debug("reading")
		}
		if gauge != nil {
			if err := gauge.Show(r, ok); err != nil {
				log.Errorf("failed to draw: %s", err)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
