// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/geo"
	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/hunt"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/navigation"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

const (
	walkStartDistanceM = 300
	walkStepM          = 1.4 // one second of walking
	fixEveryTicks      = 10
)

// RunMockConsole plays the whole hunt offline: a simulated player walks
// from a few hundred meters away to each target while a mock compass spins.
func RunMockConsole() error {
	cfg := config.Get()
	missions, err := mission.Load(cfg.MissionsFile, cfg.ArrivalRadiusMeters)
	if err != nil {
		return fmt.Errorf("load missions: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	tick := time.Duration(cfg.HeadingSampleInterval) * time.Millisecond
	return runWalk(ctx, missions, os.Stdout, tick, walkStepM)
}

// walker is a simulated player heading for a target.
type walker struct {
	pos   geo.Coordinate
	stepM float64
}

func (w *walker) stepToward(target geo.Coordinate) gps.Fix {
	d := geo.Distance(w.pos, target)
	step := math.Min(w.stepM, d)
	w.pos = geo.Destination(w.pos, geo.InitialBearing(w.pos, target), step)
	return gps.Fix{
		Time:      time.Now().UTC().Format("15:04:05"),
		Latitude:  w.pos.Latitude,
		Longitude: w.pos.Longitude,
		Validity:  gps.Valid,
	}
}

type consolePresenter struct{ out io.Writer }

func (p consolePresenter) UpdateIndicator(ind navigation.Indicator) {
	fmt.Fprintln(p.out, formatIndicator(IndicatorMessage{Indicator: ind, Visible: true}))
}

func (p consolePresenter) HideIndicator() {
	fmt.Fprintln(p.out, formatIndicator(IndicatorMessage{}))
}

func runWalk(ctx context.Context, missions []mission.Mission, out io.Writer, tick time.Duration, stepM float64) error {
	if len(missions) == 0 {
		return mission.ErrNoMissions
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	broker := sensors.NewBroker()
	loop := navigation.NewLoop(64)
	go loop.Run(ctx)

	nav := navigation.NewController(broker.Gateway(), loop, navigation.ControllerOptions{
		Presenter: consolePresenter{out: out},
		OnError:   func(err error) { fmt.Fprintf(out, "[ERR ]  %v\n", err) },
	})

	var game *hunt.Game
	var completed atomic.Bool
	advance := func(step func() error) {
		go loop.Post(func() {
			if err := step(); err != nil {
				fmt.Fprintf(out, "[ERR ]  %v\n", err)
			}
		})
	}
	game = hunt.New(missions, broker.Gateway(), nav, hunt.StageFunc(func(ev hunt.Event) {
		fmt.Fprintln(out, formatStage(ev))
		switch ev.Stage {
		case hunt.StageBriefing, hunt.StageDebrief:
			advance(game.BeginMission)
		case hunt.StageArrived:
			advance(game.Collect)
		case hunt.StageComplete:
			completed.Store(true)
			cancel()
		}
	}))

	var startErr error
	if err := loop.Do(ctx, func() { startErr = game.Start(ctx) }); err != nil {
		return err
	}
	if startErr != nil {
		return startErr
	}

	w := &walker{
		pos:   geo.Destination(missions[0].Target.Coordinate, 225, walkStartDistanceM),
		stepM: stepM,
	}
	compass := orientation.NewMockSource()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			if completed.Load() {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}

		if pose, err := compass.Next(); err == nil {
			broker.PublishOrientation(mockEvent(pose, n))
		}
		if n%fixEveryTicks != 0 {
			continue
		}

		var target geo.Coordinate
		if err := loop.Do(ctx, func() {
			_, m := game.Current()
			target = m.Target.Coordinate
		}); err != nil {
			continue
		}
		broker.PublishFix(w.stepToward(target))
	}
}
