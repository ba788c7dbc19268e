// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// MQTTGateway feeds a Broker from the GPS and heading topics that the
// producers publish on.
type MQTTGateway struct {
	*Broker
	client mqtt.Client
	topics []string
}

// NewMQTTGateway subscribes to fixTopic (gps.Fix JSON) and headingTopic
// (orientation.Event JSON) on an already connected client.
func NewMQTTGateway(client mqtt.Client, fixTopic, headingTopic string) (*MQTTGateway, error) {
	g := &MQTTGateway{Broker: NewBroker(), client: client}

	token := client.Subscribe(fixTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		g.HandleFix(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("subscribe %s: %w", fixTopic, token.Error())
	}
	g.topics = append(g.topics, fixTopic)
	log.Info().Str("topic", fixTopic).Msg("navigator: subscribed to GPS fixes")

	token = client.Subscribe(headingTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		g.HandleHeading(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("subscribe %s: %w", headingTopic, token.Error())
	}
	g.topics = append(g.topics, headingTopic)
	log.Info().Str("topic", headingTopic).Msg("navigator: subscribed to headings")

	return g, nil
}

// HandleFix decodes one fix payload and publishes it.
func (g *MQTTGateway) HandleFix(payload []byte) {
	var f gps.Fix
	if err := json.Unmarshal(payload, &f); err != nil {
		log.Warn().Err(err).Msg("navigator: gps unmarshal error")
		return
	}
	g.PublishFix(f)
}

// HandleHeading decodes one orientation event payload and publishes it.
// A pose payload (roll/pitch/yaw) is accepted too, its yaw is the heading.
func (g *MQTTGateway) HandleHeading(payload []byte) {
	var raw struct {
		orientation.Event
		Yaw *float64 `json:"yaw,omitempty"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Warn().Err(err).Msg("navigator: heading unmarshal error")
		return
	}
	if raw.CompassHeading == nil && raw.Alpha == nil && raw.Yaw != nil {
		g.PublishReading(orientation.Pose{Yaw: *raw.Yaw}.Reading())
		return
	}
	g.PublishOrientation(raw.Event)
}

// ConnectionLost is wired to the client's connection-lost handler; position
// watches see it as a transient outage.
func (g *MQTTGateway) ConnectionLost(err error) {
	log.Warn().Err(err).Msg("navigator: MQTT connection lost")
	g.PublishPositionError(fmt.Errorf("%w: broker connection lost: %v", ErrPositionUnavailable, err))
}

// Close unsubscribes from the sensor topics.
func (g *MQTTGateway) Close() {
	if len(g.topics) == 0 {
		return
	}
	token := g.client.Unsubscribe(g.topics...)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Msg("navigator: unsubscribe error")
	}
	g.topics = nil
}
