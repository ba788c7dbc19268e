// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/hunt_navigator/internal/app"
	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
)

func main() {
	// Load configuration
	if err := config.InitGlobal("hunt_config.txt"); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(config.Get().LogLevel, nil)

	log.Info().Msg("starting hunt-navigator (mock walk console)")

	if err := app.RunMockConsole(); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
