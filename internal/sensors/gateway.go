// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

var (
	// ErrPermissionDenied means the user or OS refused access to a sensor.
	// Fatal to starting navigation, never retried automatically.
	ErrPermissionDenied = errors.New("sensor permission denied")
	// ErrPositionUnavailable is a transient location failure (signal lost,
	// void fix, broker disconnect). Watches stay open.
	ErrPositionUnavailable = errors.New("position unavailable")
	// ErrOrientationUnavailable marks a heading sample that carried no
	// reading. It is skipped, not reported.
	ErrOrientationUnavailable = errors.New("orientation unavailable")
)

// Subscription is one open watch on a sampling stream.
// Stop is idempotent.
type Subscription interface {
	Stop()
}

// WatchOptions are hints for position sampling.
type WatchOptions struct {
	HighAccuracy bool
}

// PositionSource delivers continuous position fixes.
// Callbacks may arrive on any goroutine, in timestamp order.
type PositionSource interface {
	RequestPermission(ctx context.Context) error
	WatchPosition(opts WatchOptions, onFix func(gps.Fix), onError func(error)) (Subscription, error)
}

// OrientationSource delivers continuous device orientation readings.
type OrientationSource interface {
	RequestPermission(ctx context.Context) error
	WatchOrientation(onReading func(orientation.Reading)) (Subscription, error)
}

// Gateway bundles the two sensor streams navigation needs.
type Gateway struct {
	Positions    PositionSource
	Orientations OrientationSource
}

// RequestPermissions asks for orientation access first (it is the one that
// needs an explicit prompt on phones) and then location.
func (g Gateway) RequestPermissions(ctx context.Context) error {
	if err := g.Orientations.RequestPermission(ctx); err != nil {
		return fmt.Errorf("orientation permission: %w", err)
	}
	if err := g.Positions.RequestPermission(ctx); err != nil {
		return fmt.Errorf("location permission: %w", err)
	}
	return nil
}

type subscription struct {
	once sync.Once
	stop func()
}

func (s *subscription) Stop() {
	s.once.Do(s.stop)
}

// watchers is a registry of callbacks keyed by subscription.
type watchers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]T
}

func (w *watchers[T]) add(fn T) Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[int]T)
	}
	id := w.next
	w.next++
	w.fns[id] = fn
	return &subscription{stop: func() {
		w.mu.Lock()
		delete(w.fns, id)
		w.mu.Unlock()
	}}
}

// snapshot returns the current callbacks in subscription order so they can
// be invoked without holding the lock.
func (w *watchers[T]) snapshot() []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]int, 0, len(w.fns))
	for id := range w.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.fns[id])
	}
	return out
}

func (w *watchers[T]) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.fns)
}
