// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"sync"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

type fixWatch struct {
	onFix   func(gps.Fix)
	onError func(error)
}

// Broker is an in-process sensor gateway. Producers push samples into it
// (a browser over websocket, an MQTT subscription, a serial reader, a mock
// walk) and every open watch receives them.
type Broker struct {
	fixes    watchers[fixWatch]
	readings watchers[func(orientation.Reading)]

	mu                sync.RWMutex
	positionDenied    bool
	orientationDenied bool
}

// NewBroker creates a Broker with both permissions granted.
func NewBroker() *Broker {
	return &Broker{}
}

// SetPermission records the outcome of a permission prompt. A denied
// stream refuses new watches with ErrPermissionDenied.
func (b *Broker) SetPermission(position, orientation bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positionDenied = !position
	b.orientationDenied = !orientation
}

// PublishFix delivers a position fix to every position watch.
func (b *Broker) PublishFix(f gps.Fix) {
	for _, w := range b.fixes.snapshot() {
		w.onFix(f)
	}
}

// PublishPositionError delivers a location failure to every position watch.
func (b *Broker) PublishPositionError(err error) {
	for _, w := range b.fixes.snapshot() {
		if w.onError != nil {
			w.onError(err)
		}
	}
}

// PublishOrientation converts a raw event and delivers it. Events without a
// reading are still delivered as None readings; the consumer skips them.
func (b *Broker) PublishOrientation(ev orientation.Event) {
	b.PublishReading(ev.Reading())
}

// PublishReading delivers an already tagged reading.
func (b *Broker) PublishReading(r orientation.Reading) {
	for _, fn := range b.readings.snapshot() {
		fn(r)
	}
}

// PositionWatchers reports how many position watches are open.
func (b *Broker) PositionWatchers() int {
	return b.fixes.count()
}

// OrientationWatchers reports how many orientation watches are open.
func (b *Broker) OrientationWatchers() int {
	return b.readings.count()
}

// Positions returns the position side of the broker.
func (b *Broker) Positions() PositionSource {
	return brokerPositions{b}
}

// Orientations returns the orientation side of the broker.
func (b *Broker) Orientations() OrientationSource {
	return brokerOrientations{b}
}

// Gateway returns both sides as a Gateway.
func (b *Broker) Gateway() Gateway {
	return Gateway{Positions: b.Positions(), Orientations: b.Orientations()}
}

type brokerPositions struct{ b *Broker }

func (p brokerPositions) RequestPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.b.mu.RLock()
	defer p.b.mu.RUnlock()
	if p.b.positionDenied {
		return ErrPermissionDenied
	}
	return nil
}

func (p brokerPositions) WatchPosition(_ WatchOptions, onFix func(gps.Fix), onError func(error)) (Subscription, error) {
	if err := p.RequestPermission(context.Background()); err != nil {
		return nil, err
	}
	return p.b.fixes.add(fixWatch{onFix: onFix, onError: onError}), nil
}

type brokerOrientations struct{ b *Broker }

func (o brokerOrientations) RequestPermission(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.b.mu.RLock()
	defer o.b.mu.RUnlock()
	if o.b.orientationDenied {
		return ErrPermissionDenied
	}
	return nil
}

func (o brokerOrientations) WatchOrientation(onReading func(orientation.Reading)) (Subscription, error) {
	if err := o.RequestPermission(context.Background()); err != nil {
		return nil, err
	}
	return o.b.readings.add(onReading), nil
}
