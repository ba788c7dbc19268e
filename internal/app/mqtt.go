// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// connectMQTT connects to broker and blocks until the connection is up.
// onLost, if set, is called whenever the connection drops.
func connectMQTT(broker, clientID string, onLost func(error)) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	if onLost != nil {
		opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) { onLost(err) })
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return client, nil
}

// publishJSON marshals v and publishes it, logging failures on logger.
func publishJSON(client mqtt.Client, logger zerolog.Logger, topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn().Err(err).Str("topic", topic).Msg("json marshal error")
		return
	}
	token := client.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		logger.Warn().Err(token.Error()).Str("topic", topic).Msg("publish error")
	}
}

// subscribeJSON subscribes to topic and decodes every payload into a fresh T.
func subscribeJSON[T any](client mqtt.Client, logger zerolog.Logger, topic string, handle func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("unmarshal error")
			return
		}
		handle(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	logger.Info().Str("topic", topic).Msg("subscribed")
	return nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
