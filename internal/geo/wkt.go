// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrNotAPoint is returned when a WKT string holds something other than a
// non-empty POINT.
var ErrNotAPoint = errors.New("geometry is not a point")

// ParseWKTPoint parses "POINT(lon lat)" into a Coordinate.
// WKT is X/Y ordered, so X is longitude and Y is latitude.
func ParseWKTPoint(wkt string) (Coordinate, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse WKT %q: %w", wkt, err)
	}
	if !g.IsPoint() {
		return Coordinate{}, fmt.Errorf("%q: %w", wkt, ErrNotAPoint)
	}
	xy, ok := g.MustAsPoint().XY()
	if !ok {
		return Coordinate{}, fmt.Errorf("%q: empty point: %w", wkt, ErrNotAPoint)
	}
	return Coordinate{Latitude: xy.Y, Longitude: xy.X}, nil
}
