package gps

import "github.com/relabs-tech/hunt_navigator/internal/geo"

// Validity values carried over from the RMC sentence.
const (
	Valid = "A"
	Void  = "V"
)

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`                 // e.g. "12:34:56"
	Date       string  `json:"date"`                 // e.g. "2025-12-06"
	Latitude   float64 `json:"lat"`                  // decimal degrees
	Longitude  float64 `json:"lon"`                  // decimal degrees
	SpeedKnots float64 `json:"speed_knots"`          // speed over ground
	CourseDeg  float64 `json:"course_deg"`           // course over ground
	Validity   string  `json:"validity"`             // "A" (valid) / "V" (void), etc.
	HDOP       float64 `json:"hdop,omitempty"`       // from GGA when available
	AccuracyM  float64 `json:"accuracy_m,omitempty"` // browser geolocation accuracy
}

// Coordinate returns the fix position.
func (f Fix) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// IsVoid reports whether the receiver flagged the fix as not usable.
// An empty validity (browser sources) counts as valid.
func (f Fix) IsVoid() bool {
	return f.Validity == Void
}
