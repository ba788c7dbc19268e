// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

// ErrInvalidState is returned when navigation toward a different target is
// requested while one is still being tracked.
var ErrInvalidState = errors.New("navigation: invalid state")

// State of the controller for the current target.
type State int

const (
	Idle State = iota
	Tracking
	Arrived
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Arrived:
		return "arrived"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Indicator is what the presentation layer renders: distance to the target
// and how far to rotate the arrow.
type Indicator struct {
	DistanceM    float64 `json:"distance_m"`
	HaveDistance bool    `json:"have_distance"`
	Bearing      float64 `json:"bearing_deg"`
	Angle        float64 `json:"angle_deg"`
	HaveAngle    bool    `json:"have_angle"`
}

// Presenter renders the directional indicator.
type Presenter interface {
	UpdateIndicator(Indicator)
	HideIndicator()
}

// ArrivalListener is notified once per target when the player reaches it.
type ArrivalListener interface {
	Arrived(target mission.Target)
}

// ArrivalFunc adapts a function to ArrivalListener.
type ArrivalFunc func(target mission.Target)

// Arrived calls f.
func (f ArrivalFunc) Arrived(target mission.Target) { f(target) }

type nopPresenter struct{}

func (nopPresenter) UpdateIndicator(Indicator) {}
func (nopPresenter) HideIndicator()            {}

// ControllerOptions configure a Controller. Zero values are valid.
type ControllerOptions struct {
	Presenter Presenter
	Listeners []ArrivalListener
	// OnError receives transient source failures. Navigation keeps running;
	// deciding to abandon is up to the caller.
	OnError func(error)
	Metrics Metrics
}

// Controller drives one target at a time through
// Idle -> Tracking -> Arrived or Cancelled. Its methods must be called on
// the same executor the trackers post to.
type Controller struct {
	positions *PositionTracker
	headings  *HeadingTracker
	presenter Presenter
	listeners []ArrivalListener
	onError   func(error)
	metrics   Metrics

	state     State
	target    mission.Target
	hasTarget bool
	session   *Session
	posHandle *Handle
	hdgHandle *Handle
	indicator Indicator
}

// NewController builds a controller over a sensor gateway.
func NewController(gw sensors.Gateway, exec Executor, opts ControllerOptions) *Controller {
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics{}
	}
	if opts.Presenter == nil {
		opts.Presenter = nopPresenter{}
	}
	return &Controller{
		positions: NewPositionTracker(gw.Positions, exec, opts.Metrics),
		headings:  NewHeadingTracker(gw.Orientations, exec, opts.Metrics),
		presenter: opts.Presenter,
		listeners: opts.Listeners,
		onError:   opts.OnError,
		metrics:   opts.Metrics,
	}
}

// AddArrivalListener registers l for every later arrival.
func (c *Controller) AddArrivalListener(l ArrivalListener) {
	c.listeners = append(c.listeners, l)
}

// BeginNavigation starts both trackers toward target. Calling it again for
// the target already being tracked does nothing; a different target while
// tracking fails with ErrInvalidState.
func (c *Controller) BeginNavigation(target mission.Target) error {
	if c.state == Tracking {
		if c.target == target {
			return nil
		}
		return fmt.Errorf("%w: already tracking (%.6f, %.6f)", ErrInvalidState,
			c.target.Coordinate.Latitude, c.target.Coordinate.Longitude)
	}

	sess := NewSession(target)
	posHandle, err := c.positions.Start(sess, PositionCallbacks{
		OnUpdate:  c.handleUpdate,
		OnArrival: c.handleArrival,
		OnError:   c.reportError,
	})
	if err != nil {
		sess.clear()
		return fmt.Errorf("begin navigation: %w", err)
	}
	hdgHandle, err := c.headings.Start(sess, c.handleHeading)
	if err != nil {
		posHandle.Stop()
		sess.clear()
		return fmt.Errorf("begin navigation: %w", err)
	}

	c.session = sess
	c.posHandle = posHandle
	c.hdgHandle = hdgHandle
	c.target = target
	c.hasTarget = true
	c.indicator = Indicator{}
	c.state = Tracking

	log.Info().
		Float64("lat", target.Coordinate.Latitude).
		Float64("lon", target.Coordinate.Longitude).
		Float64("radius_m", target.Radius()).
		Msg("navigation: tracking started")
	return nil
}

// Cancel stops tracking without an arrival. It is a no-op unless tracking.
func (c *Controller) Cancel() {
	if c.state != Tracking {
		return
	}
	c.stopTrackers()
	c.state = Cancelled
	c.presenter.HideIndicator()
	log.Info().Msg("navigation: tracking cancelled")
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Target returns the most recent target; ok is false before the first
// BeginNavigation.
func (c *Controller) Target() (mission.Target, bool) { return c.target, c.hasTarget }

// Snapshot returns the live session state; ok is false when not tracking.
func (c *Controller) Snapshot() (Snapshot, bool) {
	if c.session == nil {
		return Snapshot{}, false
	}
	return c.session.Snapshot(), true
}

// Indicator returns the last indicator handed to the presenter.
func (c *Controller) Indicator() Indicator { return c.indicator }

func (c *Controller) handleUpdate(distanceM, bearing float64) {
	c.indicator.DistanceM = distanceM
	c.indicator.HaveDistance = true
	c.indicator.Bearing = bearing
	c.presenter.UpdateIndicator(c.indicator)
}

func (c *Controller) handleHeading(float64) {
	angle, ok := c.session.Pointer()
	if !ok {
		return
	}
	c.indicator.Angle = angle
	c.indicator.HaveAngle = true
	c.presenter.UpdateIndicator(c.indicator)
}

func (c *Controller) handleArrival() {
	target := c.target
	c.stopTrackers()
	c.state = Arrived
	c.metrics.Arrival()
	c.presenter.HideIndicator()
	log.Info().
		Float64("lat", target.Coordinate.Latitude).
		Float64("lon", target.Coordinate.Longitude).
		Msg("navigation: arrived")
	for _, l := range c.listeners {
		l.Arrived(target)
	}
}

func (c *Controller) reportError(err error) {
	log.Warn().Err(err).Msg("navigation: sensor error")
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller) stopTrackers() {
	c.posHandle.Stop()
	c.hdgHandle.Stop()
	if c.session != nil {
		c.session.clear()
	}
	c.session = nil
	c.posHandle = nil
	c.hdgHandle = nil
}
