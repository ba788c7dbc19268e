// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/geo"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// RunHeadingProducer publishes mock device orientation on TOPIC_HEADING,
// for bench setups without a compass. Samples alternate between the two
// platform conventions so both normalization paths get exercised.
func RunHeadingProducer() error {
	cfg := config.Get()
	logger := logging.For("heading")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDHeading, nil)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Info().Str("broker", cfg.MQTTBroker).Msg("connected to MQTT broker")

	ctx, stop := signalContext()
	defer stop()

	src := orientation.NewMockSource()
	ticker := time.NewTicker(time.Duration(cfg.HeadingSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return nil
		case <-ticker.C:
		}

		pose, err := src.Next()
		if err != nil {
			logger.Warn().Err(err).Msg("error from mock source")
			continue
		}

		ev := mockEvent(pose, n)
		publishJSON(client, logger, cfg.TopicHeading, false, ev)
		logger.Debug().Float64("yaw", pose.Yaw).Msg("published heading")
	}
}

// mockEvent encodes pose yaw as an iOS style compass heading on even
// samples and as an Android style alpha on odd ones.
func mockEvent(pose orientation.Pose, n int) orientation.Event {
	if n%2 == 0 {
		return orientation.CompassEvent(geo.Wrap360(pose.Yaw))
	}
	return orientation.AlphaEvent(geo.Wrap360(360 - pose.Yaw))
}
