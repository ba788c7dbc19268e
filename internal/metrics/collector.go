// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NavigationCollector bundles the Prometheus metrics of the navigation
// engine. It satisfies navigation.Metrics and is safe to share between
// players.
type NavigationCollector struct {
	gatherer prometheus.Gatherer

	PositionSamples prometheus.Counter
	HeadingSamples  prometheus.Counter
	HeadingsSkipped prometheus.Counter
	SourceErrors    prometheus.Counter
	Arrivals        prometheus.Counter
	DistanceMeters  prometheus.Histogram
	Players         prometheus.Gauge
}

// NewNavigationCollector registers the navigation metrics against reg,
// defaulting to the global registry when nil.
func NewNavigationCollector(reg prometheus.Registerer) (*NavigationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &NavigationCollector{gatherer: gatherer}
	var err error

	if c.PositionSamples, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hunt_position_samples_total",
		Help: "Position fixes that produced a distance and bearing update.",
	}), "hunt_position_samples_total"); err != nil {
		return nil, err
	}
	if c.HeadingSamples, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hunt_heading_samples_total",
		Help: "Orientation readings that carried a usable heading.",
	}), "hunt_heading_samples_total"); err != nil {
		return nil, err
	}
	if c.HeadingsSkipped, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hunt_heading_samples_skipped_total",
		Help: "Orientation readings with neither a compass heading nor alpha.",
	}), "hunt_heading_samples_skipped_total"); err != nil {
		return nil, err
	}
	if c.SourceErrors, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hunt_sensor_errors_total",
		Help: "Transient location failures reported to navigation.",
	}), "hunt_sensor_errors_total"); err != nil {
		return nil, err
	}
	if c.Arrivals, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hunt_arrivals_total",
		Help: "Targets reached.",
	}), "hunt_arrivals_total"); err != nil {
		return nil, err
	}
	if c.DistanceMeters, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hunt_target_distance_meters",
		Help:    "Distance to the active target at each position sample.",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}), "hunt_target_distance_meters"); err != nil {
		return nil, err
	}
	if c.Players, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hunt_players_connected",
		Help: "Players currently connected to the web server.",
	}), "hunt_players_connected"); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *NavigationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *NavigationCollector) PositionSample(distanceM float64) {
	c.PositionSamples.Inc()
	c.DistanceMeters.Observe(distanceM)
}

func (c *NavigationCollector) HeadingSample()  { c.HeadingSamples.Inc() }
func (c *NavigationCollector) HeadingSkipped() { c.HeadingsSkipped.Inc() }
func (c *NavigationCollector) SourceError()    { c.SourceErrors.Inc() }
func (c *NavigationCollector) Arrival()        { c.Arrivals.Inc() }

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
