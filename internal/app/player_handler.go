// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/hunt"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/metrics"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/navigation"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // phones connect over the LAN with whatever origin
	},
}

// geolocationPermissionDenied is PERMISSION_DENIED in the browser
// GeolocationPositionError codes.
const geolocationPermissionDenied = 1

// WSMessage is sent by the browser. Sensor actions carry the raw
// geolocation or deviceorientation values.
type WSMessage struct {
	Action string `json:"action"` // permission, position, position_error, orientation, start, begin, collect, abandon

	// permission
	Location    *bool `json:"location,omitempty"`
	Orientation *bool `json:"orientation,omitempty"`

	// position
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Accuracy float64  `json:"accuracy,omitempty"`

	// position_error
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// orientation
	orientation.Event

	// collect
	MissionID string `json:"mission_id,omitempty"`
}

// WSResponse is sent to the browser.
type WSResponse struct {
	Type      string                `json:"type"` // indicator, hide_indicator, arrived, stage, error
	Indicator *navigation.Indicator `json:"indicator,omitempty"`
	Target    *mission.Target       `json:"target,omitempty"`
	Stage     *hunt.Event           `json:"stage,omitempty"`
	Error     *ErrorMessage         `json:"error,omitempty"`
}

// PlayerSession is one connected phone: its own sensor broker, navigation
// loop, controller and game.
type PlayerSession struct {
	Conn    *websocket.Conn
	writeMu sync.Mutex

	broker *sensors.Broker
	loop   *navigation.Loop
	nav    *navigation.Controller
	game   *hunt.Game
	logger zerolog.Logger
}

func newPlayerSession(conn *websocket.Conn, missions []mission.Mission, m navigation.Metrics, logger zerolog.Logger) *PlayerSession {
	s := &PlayerSession{
		Conn:   conn,
		broker: sensors.NewBroker(),
		loop:   navigation.NewLoop(256),
		logger: logger,
	}
	gw := s.broker.Gateway()
	s.nav = navigation.NewController(gw, s.loop, navigation.ControllerOptions{
		Presenter: s,
		Listeners: []navigation.ArrivalListener{navigation.ArrivalFunc(func(t mission.Target) {
			s.send(WSResponse{Type: "arrived", Target: &t})
		})},
		OnError: s.sendError,
		Metrics: m,
	})
	s.game = hunt.New(missions, gw, s.nav, hunt.StageFunc(func(ev hunt.Event) {
		s.send(WSResponse{Type: "stage", Stage: &ev})
	}))
	return s
}

// UpdateIndicator implements navigation.Presenter.
func (s *PlayerSession) UpdateIndicator(ind navigation.Indicator) {
	s.send(WSResponse{Type: "indicator", Indicator: &ind})
}

// HideIndicator implements navigation.Presenter.
func (s *PlayerSession) HideIndicator() {
	s.send(WSResponse{Type: "hide_indicator"})
}

func (s *PlayerSession) send(resp WSResponse) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Conn.WriteJSON(resp); err != nil {
		s.logger.Debug().Err(err).Str("type", resp.Type).Msg("websocket write error")
	}
}

func (s *PlayerSession) sendError(err error) {
	msg := newErrorMessage(err)
	s.send(WSResponse{Type: "error", Error: &msg})
}

// handle routes one browser message. Sensor samples go straight to the
// broker (which posts them on the loop); game commands run on the loop.
func (s *PlayerSession) handle(ctx context.Context, msg WSMessage) {
	switch msg.Action {
	case "permission":
		s.broker.SetPermission(msg.Location == nil || *msg.Location, msg.Orientation == nil || *msg.Orientation)

	case "position":
		if msg.Lat == nil || msg.Lon == nil {
			s.sendError(fmt.Errorf("position without lat/lon"))
			return
		}
		s.broker.PublishFix(gps.Fix{
			Time:      time.Now().UTC().Format("15:04:05"),
			Date:      time.Now().UTC().Format("2006-01-02"),
			Latitude:  *msg.Lat,
			Longitude: *msg.Lon,
			AccuracyM: msg.Accuracy,
		})

	case "position_error":
		if msg.Code == geolocationPermissionDenied {
			s.broker.PublishPositionError(fmt.Errorf("%w: %s", sensors.ErrPermissionDenied, msg.Message))
			return
		}
		s.broker.PublishPositionError(fmt.Errorf("%w: %s", sensors.ErrPositionUnavailable, msg.Message))

	case "orientation":
		s.broker.PublishOrientation(msg.Event)

	case "start":
		s.loop.Post(func() {
			if err := s.game.Start(ctx); err != nil {
				s.sendError(err)
			}
		})

	case "begin":
		s.loop.Post(func() {
			if err := s.game.BeginMission(); err != nil {
				s.sendError(err)
			}
		})

	case "collect":
		s.loop.Post(func() {
			if err := collect(s.game, CollectMessage{MissionID: msg.MissionID}); err != nil {
				s.sendError(err)
			}
		})

	case "abandon":
		s.loop.Post(s.game.Abandon)

	default:
		s.sendError(fmt.Errorf("unknown action %q", msg.Action))
	}
}

// HandlePlayerWS serves one player over a websocket.
func HandlePlayerWS(missions []mission.Mission, collector *metrics.NavigationCollector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			wlog := logging.For("web")
			wlog.Warn().Err(err).Msg("websocket upgrade error")
			return
		}
		defer conn.Close()

		logger := logging.For("web").With().Str("remote", r.RemoteAddr).Logger()
		var m navigation.Metrics = navigation.NopMetrics{}
		if collector != nil {
			m = collector
			collector.Players.Inc()
			defer collector.Players.Dec()
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		session := newPlayerSession(conn, missions, m, logger)
		go session.loop.Run(ctx)
		logger.Info().Msg("player connected")

		// Main message loop
		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn().Err(err).Msg("websocket read error")
				}
				break
			}
			session.handle(ctx, msg)
		}

		doCtx, done := context.WithTimeout(ctx, time.Second)
		defer done()
		if err := session.loop.Do(doCtx, session.game.Abandon); err != nil {
			logger.Debug().Err(err).Msg("abandon on disconnect")
		}
		logger.Info().Msg("player disconnected")
	}
}
