// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"

	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/navigation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

// IndicatorMessage is published on TOPIC_INDICATOR. Visible is false once
// the indicator is hidden (arrival or cancellation).
type IndicatorMessage struct {
	navigation.Indicator
	Visible bool `json:"visible"`
}

// ArrivalMessage is published on TOPIC_ARRIVAL for the AR placement module.
type ArrivalMessage struct {
	Target mission.Target `json:"target"`
}

// ErrorMessage is published on TOPIC_NAV_ERROR.
type ErrorMessage struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func newErrorMessage(err error) ErrorMessage {
	return ErrorMessage{Kind: errorKind(err), Error: err.Error()}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, sensors.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, sensors.ErrPositionUnavailable):
		return "position_unavailable"
	case errors.Is(err, navigation.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}
