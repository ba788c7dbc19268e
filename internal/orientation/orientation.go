package orientation

import (
	"github.com/relabs-tech/hunt_navigator/internal/geo"
)

// Pose is the canonical representation of orientation for your app.
// Yaw is degrees clockwise from north.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Reading treats the pose yaw as a native compass heading.
func (p Pose) Reading() Reading {
	// IMU yaw may be signed
	return Reading{Kind: Compass, Value: geo.Wrap360(p.Yaw)}
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// Kind tags which platform convention a Reading came from.
type Kind int

const (
	// None means the event carried no usable heading.
	None Kind = iota
	// Compass is a native compass heading, degrees clockwise from north
	// (iOS webkitCompassHeading, NMEA HDT, IMU yaw).
	Compass
	// Alpha is a raw device-orientation alpha angle, which rotates
	// counter-clockwise (Android deviceorientation).
	Alpha
)

func (k Kind) String() string {
	switch k {
	case Compass:
		return "compass"
	case Alpha:
		return "alpha"
	default:
		return "none"
	}
}

// Reading is one orientation sample tagged with its convention.
type Reading struct {
	Kind  Kind
	Value float64
}

// Heading normalizes the reading to degrees clockwise from north in [0, 360).
// ok is false for None readings.
func (r Reading) Heading() (heading float64, ok bool) {
	switch r.Kind {
	case Compass:
		// already degrees clockwise from north
		return r.Value, true
	case Alpha:
		return geo.Wrap360(360 - r.Value), true
	default:
		return 0, false
	}
}

// Event is a raw orientation event as a browser or producer reports it.
// Either field may be missing.
type Event struct {
	CompassHeading *float64 `json:"webkitCompassHeading,omitempty"`
	Alpha          *float64 `json:"alpha,omitempty"`
}

// Reading picks the native compass heading when present, otherwise alpha.
func (e Event) Reading() Reading {
	switch {
	case e.CompassHeading != nil:
		return Reading{Kind: Compass, Value: *e.CompassHeading}
	case e.Alpha != nil:
		return Reading{Kind: Alpha, Value: *e.Alpha}
	default:
		return Reading{Kind: None}
	}
}

// CompassEvent builds an Event carrying only a native heading.
func CompassEvent(heading float64) Event {
	return Event{CompassHeading: &heading}
}

// AlphaEvent builds an Event carrying only a raw alpha angle.
func AlphaEvent(alpha float64) Event {
	return Event{Alpha: &alpha}
}
