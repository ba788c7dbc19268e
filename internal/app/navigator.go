// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/hunt"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/navigation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

// mqttPresenter publishes indicator updates for the display and consoles.
type mqttPresenter struct {
	client mqtt.Client
	logger zerolog.Logger
	topic  string
}

func (p mqttPresenter) UpdateIndicator(ind navigation.Indicator) {
	publishJSON(p.client, p.logger, p.topic, false, IndicatorMessage{Indicator: ind, Visible: true})
}

func (p mqttPresenter) HideIndicator() {
	publishJSON(p.client, p.logger, p.topic, true, IndicatorMessage{})
}

// RunNavigator runs the hunt against fixes and headings arriving over MQTT.
// Stages, indicator updates, arrivals and sensor errors are published back;
// the AR placement module reports collection on TOPIC_COLLECT.
func RunNavigator() error {
	cfg := config.Get()
	logger := logging.For("navigator")

	missions, err := mission.Load(cfg.MissionsFile, cfg.ArrivalRadiusMeters)
	if err != nil {
		return fmt.Errorf("load missions: %w", err)
	}
	logger.Info().Int("missions", len(missions)).Str("file", cfg.MissionsFile).Msg("missions loaded")

	var gw atomic.Pointer[sensors.MQTTGateway]
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDNavigator, func(err error) {
		if g := gw.Load(); g != nil {
			g.ConnectionLost(err)
		}
	})
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Info().Str("broker", cfg.MQTTBroker).Msg("connected to MQTT broker")

	gateway, err := sensors.NewMQTTGateway(client, cfg.TopicGPS, cfg.TopicHeading)
	if err != nil {
		return err
	}
	defer gateway.Close()
	gw.Store(gateway)

	ctx, stop := signalContext()
	defer stop()

	loop := navigation.NewLoop(256)
	go loop.Run(ctx)

	nav := navigation.NewController(gateway.Gateway(), loop, navigation.ControllerOptions{
		Presenter: mqttPresenter{client: client, logger: logger, topic: cfg.TopicIndicator},
		Listeners: []navigation.ArrivalListener{navigation.ArrivalFunc(func(t mission.Target) {
			publishJSON(client, logger, cfg.TopicArrival, false, ArrivalMessage{Target: t})
		})},
		OnError: func(err error) {
			publishJSON(client, logger, cfg.TopicNavError, false, newErrorMessage(err))
		},
	})

	var game *hunt.Game
	game = hunt.New(missions, gateway.Gateway(), nav, hunt.StageFunc(func(ev hunt.Event) {
		publishJSON(client, logger, cfg.TopicStage, true, ev)
		switch ev.Stage {
		case hunt.StageBriefing, hunt.StageDebrief:
			// no audio here: go straight to the next target
			go loop.Post(func() { beginMission(game, client, logger, cfg.TopicNavError) })
		case hunt.StageComplete:
			logger.Info().Int("collected", ev.Collected).Msg("hunt complete")
			stop()
		}
	}))

	if err := subscribeJSON(client, logger, cfg.TopicCollect, func(msg CollectMessage) {
		loop.Post(func() {
			if err := collect(game, msg); err != nil {
				logger.Warn().Err(err).Msg("collect rejected")
				publishJSON(client, logger, cfg.TopicNavError, false, newErrorMessage(err))
			}
		})
	}); err != nil {
		return err
	}

	var startErr error
	if err := loop.Do(ctx, func() { startErr = game.Start(ctx) }); err != nil {
		return err
	}
	if startErr != nil {
		publishJSON(client, logger, cfg.TopicNavError, false, newErrorMessage(startErr))
		return startErr
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	return nil
}

// CollectMessage is what the AR placement module sends on TOPIC_COLLECT.
type CollectMessage struct {
	MissionID string `json:"mission_id,omitempty"`
}

// collect checks that the report is for the current mission before
// recording it. An empty mission id means the current one.
func collect(game *hunt.Game, msg CollectMessage) error {
	_, current := game.Current()
	if msg.MissionID != "" && msg.MissionID != current.ID {
		return fmt.Errorf("%w: collect for %q while playing %q", hunt.ErrOutOfOrder, msg.MissionID, current.ID)
	}
	return game.Collect()
}

func beginMission(game *hunt.Game, client mqtt.Client, logger zerolog.Logger, errTopic string) {
	err := game.BeginMission()
	if err == nil {
		return
	}
	logger.Warn().Err(err).Msg("begin mission failed")
	publishJSON(client, logger, errTopic, false, newErrorMessage(err))
}
