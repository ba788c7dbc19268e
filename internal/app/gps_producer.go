package app

import (
	"fmt"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
	"github.com/relabs-tech/hunt_navigator/internal/sensors"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes fixes as JSON on TOPIC_GPS. True headings (HDT) from receivers
// that report them go to TOPIC_HEADING.
func RunGPSProducer() error {
	cfg := config.Get()
	logger := logging.For("gps")

	// ---- 1) Connect to MQTT broker ----
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS, func(err error) {
		logger.Warn().Err(err).Msg("MQTT connection lost")
	})
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	logger.Info().Str("broker", cfg.MQTTBroker).Msg("connected to MQTT broker")

	// ---- 2) Open GPS serial port ----
	serialOpts := sensors.SerialOptions(cfg.GPSSerialPort, cfg.GPSBaudRate)
	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.GPSSerialPort, err)
	}
	defer port.Close()
	logger.Info().Str("port", serialOpts.PortName).Uint("baud", serialOpts.BaudRate).Msg("serial port opened")

	ctx, stop := signalContext()
	defer stop()
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	// ---- 3) One fix per RMC, retained so late subscribers get a position ----
	err = sensors.ReadNMEA(ctx, port,
		func(f gps.Fix) {
			publishJSON(client, logger, cfg.TopicGPS, true, f)
			logger.Debug().
				Float64("lat", f.Latitude).
				Float64("lon", f.Longitude).
				Str("validity", f.Validity).
				Msg("published fix")
		},
		func(ev orientation.Event) {
			publishJSON(client, logger, cfg.TopicHeading, false, ev)
		},
	)
	if ctx.Err() != nil {
		logger.Info().Msg("shutting down")
		return nil
	}
	if err != nil {
		return fmt.Errorf("gps read: %w", err)
	}
	return nil
}
