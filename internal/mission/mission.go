// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mission

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/relabs-tech/hunt_navigator/internal/geo"
)

// DefaultArrivalRadiusMeters is the distance under which a target counts as
// reached when neither the mission nor the config overrides it.
const DefaultArrivalRadiusMeters = 20.0

var (
	// ErrNoMissions is returned when the content file has an empty sequence.
	ErrNoMissions = errors.New("no missions defined")
	// ErrInvalidLocation is returned for entries without a usable position.
	ErrInvalidLocation = errors.New("mission has no valid location")
)

// Target is the fixed point a player navigates to.
type Target struct {
	Coordinate     geo.Coordinate `json:"coordinate"`
	ArrivalRadiusM float64        `json:"arrival_radius_m"`
}

// Radius returns the arrival radius, falling back to the default when unset.
func (t Target) Radius() float64 {
	if t.ArrivalRadiusM <= 0 {
		return DefaultArrivalRadiusMeters
	}
	return t.ArrivalRadiusM
}

// Mission is one step of the hunt. Only Target matters to navigation, the
// rest is content handed through to presentation and AR placement.
type Mission struct {
	ID              string `json:"id"`
	Title           string `json:"title,omitempty"`
	Target          Target `json:"target"`
	IntroAudio      string `json:"intro_audio,omitempty"`
	CompletionAudio string `json:"completion_audio,omitempty"`
	ObjectModel     string `json:"object_model,omitempty"`
}

// entry is the on-disk shape of a mission.
type entry struct {
	ID              string   `mapstructure:"id"`
	Title           string   `mapstructure:"title"`
	Lat             *float64 `mapstructure:"lat"`
	Lon             *float64 `mapstructure:"lon"`
	Location        string   `mapstructure:"location"` // WKT, e.g. POINT(lon lat)
	ArrivalRadiusM  float64  `mapstructure:"arrival_radius_m"`
	IntroAudio      string   `mapstructure:"intro_audio"`
	CompletionAudio string   `mapstructure:"completion_audio"`
	ObjectModel     string   `mapstructure:"object_model"`
}

// Load reads the ordered mission sequence from a YAML or JSON file.
// defaultRadius applies to entries without arrival_radius_m; zero or less
// means DefaultArrivalRadiusMeters.
func Load(path string, defaultRadius float64) ([]Mission, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v.SetConfigType("json")
	default:
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read missions file: %w", err)
	}

	var entries []entry
	if err := v.UnmarshalKey("missions", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode missions: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoMissions
	}

	if defaultRadius <= 0 {
		defaultRadius = DefaultArrivalRadiusMeters
	}

	missions := make([]Mission, 0, len(entries))
	for i, e := range entries {
		m, err := e.toMission(defaultRadius)
		if err != nil {
			return nil, fmt.Errorf("mission %d (%s): %w", i, e.ID, err)
		}
		if m.ID == "" {
			m.ID = fmt.Sprintf("mission-%d", i+1)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

func (e entry) toMission(defaultRadius float64) (Mission, error) {
	var coord geo.Coordinate
	switch {
	case e.Location != "":
		c, err := geo.ParseWKTPoint(e.Location)
		if err != nil {
			return Mission{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
		}
		coord = c
	case e.Lat != nil && e.Lon != nil:
		coord = geo.Coordinate{Latitude: *e.Lat, Longitude: *e.Lon}
	default:
		return Mission{}, ErrInvalidLocation
	}

	radius := e.ArrivalRadiusM
	if radius <= 0 {
		radius = defaultRadius
	}

	return Mission{
		ID:    e.ID,
		Title: e.Title,
		Target: Target{
			Coordinate:     coord,
			ArrivalRadiusM: radius,
		},
		IntroAudio:      e.IntroAudio,
		CompletionAudio: e.CompletionAudio,
		ObjectModel:     e.ObjectModel,
	}, nil
}
