// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for all great-circle math.
const EarthRadiusMeters = 6371e3

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Wrap360 maps any finite angle in degrees into [0, 360).
func Wrap360(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	// -1e-15 + 360 rounds to exactly 360
	if w >= 360 {
		w = 0
	}
	return w
}

// Distance returns the haversine great-circle distance in meters.
// Inputs are not range checked.
func Distance(a, b Coordinate) float64 {
	φ1 := toRadians(a.Latitude)
	φ2 := toRadians(b.Latitude)
	Δφ := toRadians(b.Latitude - a.Latitude)
	Δλ := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	// rounding can push h just past 1 for antipodal points
	h = math.Min(1, h)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// InitialBearing returns the forward azimuth from -> to in degrees,
// clockwise from true north, in [0, 360).
// Identical points give atan2(0, 0) = 0.
func InitialBearing(from, to Coordinate) float64 {
	φ1 := toRadians(from.Latitude)
	φ2 := toRadians(to.Latitude)
	Δλ := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	θ := math.Atan2(y, x)

	return Wrap360(toDegrees(θ) + 360)
}

// Destination returns the point reached by travelling distanceM meters
// from start along the given initial bearing.
func Destination(start Coordinate, bearing, distanceM float64) Coordinate {
	δ := distanceM / EarthRadiusMeters
	θ := toRadians(bearing)
	φ1 := toRadians(start.Latitude)
	λ1 := toRadians(start.Longitude)

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	lon := math.Mod(toDegrees(λ2)+540, 360) - 180
	return Coordinate{Latitude: toDegrees(φ2), Longitude: lon}
}
