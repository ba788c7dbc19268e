package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = []Coordinate{
	{0, 0},
	{0, 1},
	{1, 0},
	{-27.631781070044788, -48.67967086580981},
	{-27.630594320828294, -48.681127324423436},
	{51.5007, -0.1246},
	{40.6892, -74.0445},
	{89.9, 179.9},
	{-89.9, -179.9},
	{0, 180},
	{0, -180},
	{123, 456}, // out of range, processed mathematically
	{-86.78, -180},
	{86.78, 0},
}

func TestDistanceAntipodal(t *testing.T) {
	half := math.Pi * EarthRadiusMeters
	for lat := -89.63; lat <= 90; lat += 0.37 {
		for lon := -180.0; lon <= 180; lon += 0.53 {
			a := Coordinate{lat, lon}
			b := Coordinate{-lat, lon + 180}
			d := Distance(a, b)
			require.False(t, math.IsNaN(d), "a=%v b=%v", a, b)
			assert.InDelta(t, half, d, 1, "a=%v b=%v", a, b)
			assert.InDelta(t, d, Distance(b, a), 1e-6, "a=%v b=%v", a, b)
		}
	}
}

func TestDistanceToSelfIsZero(t *testing.T) {
	for _, c := range fixtures {
		assert.Equal(t, 0.0, Distance(c, c), "Distance(%v, %v)", c, c)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	for _, a := range fixtures {
		for _, b := range fixtures {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6, "a=%v b=%v", a, b)
		}
	}
}

func TestDistanceOneDegreeAtEquator(t *testing.T) {
	d := Distance(Coordinate{0, 0}, Coordinate{0, 1})
	assert.InDelta(t, 111195.0, d, 1.0)
}

func TestDistanceMissionLegs(t *testing.T) {
	// the two original mission points are roughly 195 m apart
	d := Distance(fixtures[3], fixtures[4])
	assert.InDelta(t, 195, d, 10)
}

func TestInitialBearingCardinal(t *testing.T) {
	origin := Coordinate{0, 0}
	assert.InDelta(t, 0.0, InitialBearing(origin, Coordinate{1, 0}), 1e-9, "north")
	assert.InDelta(t, 90.0, InitialBearing(origin, Coordinate{0, 1}), 1e-9, "east")
	assert.InDelta(t, 180.0, InitialBearing(origin, Coordinate{-1, 0}), 1e-9, "south")
	assert.InDelta(t, 270.0, InitialBearing(origin, Coordinate{0, -1}), 1e-9, "west")
}

func TestInitialBearingRange(t *testing.T) {
	for _, a := range fixtures {
		for _, b := range fixtures {
			got := InitialBearing(a, b)
			assert.False(t, math.IsNaN(got), "a=%v b=%v", a, b)
			assert.GreaterOrEqual(t, got, 0.0, "a=%v b=%v", a, b)
			assert.Less(t, got, 360.0, "a=%v b=%v", a, b)
		}
	}
}

func TestInitialBearingSamePoint(t *testing.T) {
	c := Coordinate{-27.63, -48.68}
	assert.Equal(t, 0.0, InitialBearing(c, c))
}

func TestInitialBearingNotSymmetric(t *testing.T) {
	a := Coordinate{51.5007, -0.1246}
	b := Coordinate{40.6892, -74.0445}
	assert.NotEqual(t, InitialBearing(a, b), InitialBearing(b, a))
}

func TestWrap360(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		359.5:  359.5,
		360:    0,
		720:    0,
		-90:    270,
		-450:   270,
		45:     45,
		-1e-15: 0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, Wrap360(in), 1e-9, "Wrap360(%v)", in)
	}
}

func TestParseWKTPoint(t *testing.T) {
	c, err := ParseWKTPoint("POINT(-48.681127324423436 -27.630594320828294)")
	require.NoError(t, err)
	assert.InDelta(t, -27.630594320828294, c.Latitude, 1e-12)
	assert.InDelta(t, -48.681127324423436, c.Longitude, 1e-12)
}

func TestParseWKTPointRejectsOtherGeometries(t *testing.T) {
	_, err := ParseWKTPoint("LINESTRING(0 0,1 1)")
	assert.ErrorIs(t, err, ErrNotAPoint)

	_, err = ParseWKTPoint("POINT EMPTY")
	assert.ErrorIs(t, err, ErrNotAPoint)

	_, err = ParseWKTPoint("not wkt")
	assert.Error(t, err)
}

func TestDestinationRoundTrip(t *testing.T) {
	start := Coordinate{Latitude: -27.631781070044788, Longitude: -48.67967086580981}
	for _, bearing := range []float64{1, 45, 90, 180, 270, 333} {
		dst := Destination(start, bearing, 150)
		assert.InDelta(t, 150, Distance(start, dst), 1e-6, "bearing %v", bearing)
		assert.InDelta(t, bearing, InitialBearing(start, dst), 1e-6, "bearing %v", bearing)
	}
}

func TestDestinationZeroDistance(t *testing.T) {
	start := Coordinate{Latitude: 10, Longitude: 20}
	dst := Destination(start, 123, 0)
	assert.InDelta(t, 10, dst.Latitude, 1e-12)
	assert.InDelta(t, 20, dst.Longitude, 1e-12)
}
