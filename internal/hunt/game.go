// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hunt

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/navigation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

var (
	// ErrNotStarted is returned by mission calls before Start.
	ErrNotStarted = errors.New("hunt not started")
	// ErrFinished is returned once every mission has been collected.
	ErrFinished = errors.New("hunt finished")
	// ErrNotArrived is returned by Collect before the target was reached.
	ErrNotArrived = errors.New("target not reached yet")
	// ErrOutOfOrder is returned when a step is requested in the wrong stage.
	ErrOutOfOrder = errors.New("hunt step out of order")
)

// Stage is where the player is in the current mission.
type Stage string

const (
	StageIdle       Stage = ""
	StageBriefing   Stage = "briefing"   // intro audio before the first mission
	StageNavigating Stage = "navigating" // compass indicator shown
	StageArrived    Stage = "arrived"    // AR placement takes over
	StageDebrief    Stage = "debrief"    // completion audio, then next mission
	StageComplete   Stage = "complete"
	StageAbandoned  Stage = "abandoned"
)

// Event is emitted on every stage change.
type Event struct {
	Stage     Stage           `json:"stage"`
	Index     int             `json:"mission_index"`
	Mission   mission.Mission `json:"mission"`
	Collected int             `json:"collected"`
	Total     int             `json:"total"`
}

// StageListener receives stage events.
type StageListener interface {
	Stage(Event)
}

// StageFunc adapts a function to StageListener.
type StageFunc func(Event)

// Stage calls f.
func (f StageFunc) Stage(e Event) { f(e) }

// Game walks the player through the ordered missions. Like the navigation
// controller it is not safe for concurrent use; call it on the navigation
// executor.
type Game struct {
	missions  []mission.Mission
	gateway   sensors.Gateway
	nav       *navigation.Controller
	listener  StageListener
	stage     Stage
	index     int
	collected []bool
}

// New creates a game over missions. nav must be built on the same gateway.
func New(missions []mission.Mission, gateway sensors.Gateway, nav *navigation.Controller, listener StageListener) *Game {
	if listener == nil {
		listener = StageFunc(func(Event) {})
	}
	g := &Game{
		missions:  missions,
		gateway:   gateway,
		nav:       nav,
		listener:  listener,
		collected: make([]bool, len(missions)),
	}
	nav.AddArrivalListener(navigation.ArrivalFunc(g.arrived))
	return g
}

// Start asks for sensor permissions and briefs the first mission. A denied
// permission is returned as is and leaves the game idle. Calling Start while
// a hunt is running does nothing; after completion or abandonment it
// restarts from the first mission.
func (g *Game) Start(ctx context.Context) error {
	switch g.stage {
	case StageIdle, StageComplete, StageAbandoned:
	default:
		return nil
	}
	if len(g.missions) == 0 {
		return mission.ErrNoMissions
	}
	if err := g.gateway.RequestPermissions(ctx); err != nil {
		return fmt.Errorf("start hunt: %w", err)
	}
	g.index = 0
	g.collected = make([]bool, len(g.missions))
	g.emit(StageBriefing)
	return nil
}

// BeginMission starts navigation toward the current mission target. It is
// valid after the briefing and after a debrief.
func (g *Game) BeginMission() error {
	switch g.stage {
	case StageIdle, StageAbandoned:
		return ErrNotStarted
	case StageComplete:
		return ErrFinished
	case StageNavigating:
		return nil
	case StageBriefing, StageDebrief:
	default:
		return fmt.Errorf("%w: begin mission during %s", ErrOutOfOrder, g.stage)
	}
	if err := g.nav.BeginNavigation(g.missions[g.index].Target); err != nil {
		return fmt.Errorf("begin mission %s: %w", g.missions[g.index].ID, err)
	}
	g.emit(StageNavigating)
	return nil
}

// Collect records that the AR placement module collected the current
// mission's object. It debriefs and advances, or completes the hunt after
// the last mission.
func (g *Game) Collect() error {
	switch g.stage {
	case StageIdle, StageAbandoned:
		return ErrNotStarted
	case StageComplete:
		return ErrFinished
	case StageArrived:
	default:
		return ErrNotArrived
	}
	g.collected[g.index] = true
	log.Info().Str("mission", g.missions[g.index].ID).Msg("hunt: object collected")

	if g.index == len(g.missions)-1 {
		g.emit(StageComplete)
		return nil
	}
	g.emit(StageDebrief)
	g.index++
	return nil
}

// Abandon cancels navigation and ends the hunt without completing it.
func (g *Game) Abandon() {
	switch g.stage {
	case StageIdle, StageComplete, StageAbandoned:
		return
	}
	g.nav.Cancel()
	g.emit(StageAbandoned)
}

// Stage returns the current stage.
func (g *Game) Stage() Stage { return g.stage }

// Current returns the index and mission being played.
func (g *Game) Current() (int, mission.Mission) {
	if len(g.missions) == 0 {
		return 0, mission.Mission{}
	}
	return g.index, g.missions[g.index]
}

// Collected returns how many missions have been collected.
func (g *Game) Collected() int {
	n := 0
	for _, c := range g.collected {
		if c {
			n++
		}
	}
	return n
}

// Missions returns the mission list.
func (g *Game) Missions() []mission.Mission { return g.missions }

func (g *Game) arrived(target mission.Target) {
	if g.stage != StageNavigating || g.missions[g.index].Target != target {
		return
	}
	g.emit(StageArrived)
}

func (g *Game) emit(stage Stage) {
	g.stage = stage
	ev := Event{
		Stage:     stage,
		Index:     g.index,
		Mission:   g.missions[g.index],
		Collected: g.Collected(),
		Total:     len(g.missions),
	}
	log.Info().Str("stage", string(stage)).Int("mission_index", g.index).Msg("hunt: stage")
	g.listener.Stage(ev)
}
