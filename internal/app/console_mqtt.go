package app

import (
	"fmt"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/gps"
	"github.com/relabs-tech/hunt_navigator/internal/hunt"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// RunConsoleMQTT prints every hunt topic to stdout.
func RunConsoleMQTT() error {
	cfg := config.Get()
	logger := logging.For("console")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, nil)
	if err != nil {
		return err
	}
	logger.Info().Str("broker", cfg.MQTTBroker).Msg("connected to MQTT broker")

	if err := subscribeJSON(client, logger, cfg.TopicGPS, func(f gps.Fix) {
		fmt.Printf(
			"[GPS ]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s\n",
			f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity,
		)
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, logger, cfg.TopicHeading, func(ev orientation.Event) {
		r := ev.Reading()
		if h, ok := r.Heading(); ok {
			fmt.Printf("[HDG ]  %-7s raw=%6.1f heading=%6.1f°\n", r.Kind, r.Value, h)
			return
		}
		fmt.Println("[HDG ]  no reading")
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, logger, cfg.TopicIndicator, func(m IndicatorMessage) {
		fmt.Println(formatIndicator(m))
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, logger, cfg.TopicArrival, func(m ArrivalMessage) {
		fmt.Printf("[ARRV]  lat=%.6f lon=%.6f radius=%.0fm\n",
			m.Target.Coordinate.Latitude, m.Target.Coordinate.Longitude, m.Target.Radius())
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, logger, cfg.TopicStage, func(ev hunt.Event) {
		fmt.Println(formatStage(ev))
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, logger, cfg.TopicNavError, func(m ErrorMessage) {
		fmt.Printf("[ERR ]  %s: %s\n", m.Kind, m.Error)
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("shutting down")
	client.Disconnect(250)
	return nil
}

func formatIndicator(m IndicatorMessage) string {
	if !m.Visible {
		return "[NAV ]  indicator hidden"
	}
	angle := "   --"
	if m.HaveAngle {
		angle = fmt.Sprintf("%6.1f°", m.Angle)
	}
	return fmt.Sprintf("[NAV ]  dist=%7.1fm bearing=%6.1f° turn=%s", m.DistanceM, m.Bearing, angle)
}

func formatStage(ev hunt.Event) string {
	return fmt.Sprintf("[HUNT]  %-10s mission=%d/%d (%s) collected=%d",
		ev.Stage, ev.Index+1, ev.Total, ev.Mission.ID, ev.Collected)
}
