// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"github.com/relabs-tech/hunt_navigator/internal/geo"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
)

// Session is the runtime state of one navigation toward a single target.
// The position tracker writes position and bearing, the heading tracker
// writes heading, and the pointer reads whatever is latest.
type Session struct {
	target mission.Target

	position     geo.Coordinate
	havePosition bool
	bearing      float64
	haveBearing  bool
	heading      float64
	haveHeading  bool

	active bool
}

// NewSession opens an active session for target.
func NewSession(target mission.Target) *Session {
	return &Session{target: target, active: true}
}

// Target returns the coordinate and radius being navigated to.
func (s *Session) Target() mission.Target { return s.target }

// Active reports whether the session still accepts samples.
func (s *Session) Active() bool { return s.active }

// Pointer returns the indicator rotation: latest bearing minus latest
// heading. ok is false until both have been sampled at least once.
func (s *Session) Pointer() (angle float64, ok bool) {
	if !s.haveBearing || !s.haveHeading {
		return 0, false
	}
	return RelativeAngle(s.bearing, s.heading), true
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	Target       mission.Target `json:"target"`
	Position     geo.Coordinate `json:"position"`
	HavePosition bool           `json:"have_position"`
	Bearing      float64        `json:"bearing_deg"`
	HaveBearing  bool           `json:"have_bearing"`
	Heading      float64        `json:"heading_deg"`
	HaveHeading  bool           `json:"have_heading"`
	Active       bool           `json:"active"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Target:       s.target,
		Position:     s.position,
		HavePosition: s.havePosition,
		Bearing:      s.bearing,
		HaveBearing:  s.haveBearing,
		Heading:      s.heading,
		HaveHeading:  s.haveHeading,
		Active:       s.active,
	}
}

func (s *Session) recordPosition(pos geo.Coordinate, bearing float64) {
	s.position, s.havePosition = pos, true
	s.bearing, s.haveBearing = bearing, true
}

func (s *Session) recordHeading(heading float64) {
	s.heading, s.haveHeading = heading, true
}

// clear deactivates the session and forgets every sample.
func (s *Session) clear() {
	*s = Session{target: s.target}
}

// RelativeAngle is the rotation that points the indicator at the target
// from the device's facing direction. The result is not normalized and may
// fall anywhere in (-360, 360).
func RelativeAngle(bearing, heading float64) float64 {
	return bearing - heading
}
