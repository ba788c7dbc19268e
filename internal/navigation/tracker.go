// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"fmt"

	"github.com/relabs-tech/hunt_navigator/internal/geo"
	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

// Handle is one running tracker subscription.
type Handle struct {
	sub    sensors.Subscription
	active bool
}

// Stop unsubscribes. It is safe to call more than once, and once it has
// returned no callback for this handle runs, including samples that were
// already queued on the executor.
func (h *Handle) Stop() {
	if h == nil || !h.active {
		return
	}
	h.active = false
	if h.sub != nil {
		h.sub.Stop()
	}
}

// Active reports whether the handle still delivers callbacks.
func (h *Handle) Active() bool {
	return h != nil && h.active
}

// PositionCallbacks are invoked on the executor for every position sample.
type PositionCallbacks struct {
	OnUpdate  func(distanceM, bearing float64)
	OnArrival func()
	OnError   func(error)
}

// PositionTracker turns position fixes into distance and bearing toward the
// session target, and detects arrival.
type PositionTracker struct {
	source  sensors.PositionSource
	exec    Executor
	metrics Metrics
}

// NewPositionTracker wires a tracker to a source. Callbacks from source are
// re-posted on exec.
func NewPositionTracker(source sensors.PositionSource, exec Executor, metrics Metrics) *PositionTracker {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PositionTracker{source: source, exec: exec, metrics: metrics}
}

// Start opens a high-accuracy watch for sess. When a sample lands inside the
// arrival radius the handle is stopped first and OnArrival fires once.
func (t *PositionTracker) Start(sess *Session, cb PositionCallbacks) (*Handle, error) {
	h := &Handle{active: true}
	sub, err := t.source.WatchPosition(sensors.WatchOptions{HighAccuracy: true},
		func(f gps.Fix) {
			t.exec.Post(func() { t.handleFix(h, sess, cb, f) })
		},
		func(err error) {
			t.exec.Post(func() { t.handleError(h, sess, cb, err) })
		},
	)
	if err != nil {
		h.active = false
		return nil, fmt.Errorf("watch position: %w", err)
	}
	h.sub = sub
	return h, nil
}

func (t *PositionTracker) handleFix(h *Handle, sess *Session, cb PositionCallbacks, f gps.Fix) {
	if !h.active || !sess.active {
		return
	}
	if f.IsVoid() {
		t.handleError(h, sess, cb, fmt.Errorf("%w: receiver reported a void fix", sensors.ErrPositionUnavailable))
		return
	}

	pos := f.Coordinate()
	target := sess.target
	distance := geo.Distance(pos, target.Coordinate)
	bearing := geo.InitialBearing(pos, target.Coordinate)

	sess.recordPosition(pos, bearing)
	t.metrics.PositionSample(distance)
	if cb.OnUpdate != nil {
		cb.OnUpdate(distance, bearing)
	}

	// OnUpdate may have stopped us
	if !h.active {
		return
	}
	if distance < target.Radius() {
		h.Stop()
		if cb.OnArrival != nil {
			cb.OnArrival()
		}
	}
}

func (t *PositionTracker) handleError(h *Handle, sess *Session, cb PositionCallbacks, err error) {
	if !h.active || !sess.active {
		return
	}
	t.metrics.SourceError()
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// HeadingTracker turns orientation readings into compass headings.
type HeadingTracker struct {
	source  sensors.OrientationSource
	exec    Executor
	metrics Metrics
}

// NewHeadingTracker wires a tracker to a source.
func NewHeadingTracker(source sensors.OrientationSource, exec Executor, metrics Metrics) *HeadingTracker {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &HeadingTracker{source: source, exec: exec, metrics: metrics}
}

// Start subscribes for sess. Readings that carry no heading are skipped
// without calling onHeading.
func (t *HeadingTracker) Start(sess *Session, onHeading func(heading float64)) (*Handle, error) {
	h := &Handle{active: true}
	sub, err := t.source.WatchOrientation(func(r orientation.Reading) {
		t.exec.Post(func() { t.handleReading(h, sess, onHeading, r) })
	})
	if err != nil {
		h.active = false
		return nil, fmt.Errorf("watch orientation: %w", err)
	}
	h.sub = sub
	return h, nil
}

func (t *HeadingTracker) handleReading(h *Handle, sess *Session, onHeading func(float64), r orientation.Reading) {
	if !h.active || !sess.active {
		return
	}
	heading, ok := r.Heading()
	if !ok {
		t.metrics.HeadingSkipped()
		return
	}
	sess.recordHeading(heading)
	t.metrics.HeadingSample()
	if onHeading != nil {
		onHeading(heading)
	}
}
