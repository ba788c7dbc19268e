// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

// Metrics receives navigation counters. All methods are called on the
// navigation executor.
type Metrics interface {
	PositionSample(distanceM float64)
	HeadingSample()
	HeadingSkipped()
	SourceError()
	Arrival()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) PositionSample(float64) {}
func (NopMetrics) HeadingSample()         {}
func (NopMetrics) HeadingSkipped()        {}
func (NopMetrics) SourceError()           {}
func (NopMetrics) Arrival()               {}
