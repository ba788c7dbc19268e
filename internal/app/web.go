package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/relabs-tech/hunt_navigator/internal/config"
	"github.com/relabs-tech/hunt_navigator/internal/logging"
	"github.com/relabs-tech/hunt_navigator/internal/metrics"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
)

// RunWeb serves the player front end. Every websocket on /ws is a separate
// player whose phone streams geolocation and deviceorientation samples.
func RunWeb() error {
	cfg := config.Get()
	logger := logging.For("web")

	missions, err := mission.Load(cfg.MissionsFile, cfg.ArrivalRadiusMeters)
	if err != nil {
		return fmt.Errorf("load missions: %w", err)
	}
	logger.Info().Int("missions", len(missions)).Str("file", cfg.MissionsFile).Msg("missions loaded")

	collector, err := metrics.NewNavigationCollector(nil)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	logger.Info().Str("addr", addr).Str("static", cfg.WebStaticDir).Msg("web server listening")
	return http.ListenAndServe(addr, newWebMux(missions, collector, cfg.WebStaticDir))
}

func newWebMux(missions []mission.Mission, collector *metrics.NavigationCollector, staticDir string) *http.ServeMux {
	logger := logging.For("web")
	mux := http.NewServeMux()

	// JSON API endpoint: mission list
	mux.HandleFunc("/api/missions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(missions); err != nil {
			logger.Warn().Err(err).Msg("json encode error")
		}
	})

	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/ws", HandlePlayerWS(missions, collector))

	// Static files as the root
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}
