package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDGPS       string
	MQTTClientIDHeading   string
	MQTTClientIDNavigator string
	MQTTClientIDConsole   string
	MQTTClientIDDisplay   string

	// Topics
	TopicGPS       string
	TopicHeading   string
	TopicIndicator string
	TopicArrival   string
	TopicCollect   string
	TopicStage     string
	TopicNavError  string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Missions
	MissionsFile        string
	ArrivalRadiusMeters float64

	// Timing
	HeadingSampleInterval int // milliseconds
	DisplayUpdateInterval int // milliseconds

	// Web Server
	WebServerPort int
	WebStaticDir  string

	LogLevel string
}

const envPrefix = "HUNT"

// defaults mirror the values shipped in hunt_config.txt. Every key the file
// may contain must be listed here, unknown keys are rejected.
var defaults = map[string]any{
	"MQTT_BROKER":              "",
	"MQTT_CLIENT_ID_GPS":       "hunt-gps-producer",
	"MQTT_CLIENT_ID_HEADING":   "hunt-heading-producer",
	"MQTT_CLIENT_ID_NAVIGATOR": "hunt-navigator",
	"MQTT_CLIENT_ID_CONSOLE":   "hunt-console",
	"MQTT_CLIENT_ID_DISPLAY":   "hunt-display",

	"TOPIC_GPS":       "hunt/gps",
	"TOPIC_HEADING":   "hunt/heading",
	"TOPIC_INDICATOR": "hunt/indicator",
	"TOPIC_ARRIVAL":   "hunt/arrival",
	"TOPIC_COLLECT":   "hunt/collect",
	"TOPIC_STAGE":     "hunt/stage",
	"TOPIC_NAV_ERROR": "hunt/error",

	"GPS_SERIAL_PORT": "/dev/serial0",
	"GPS_BAUD_RATE":   9600,

	"MISSIONS_FILE":         "",
	"ARRIVAL_RADIUS_METERS": 20.0,

	"HEADING_SAMPLE_INTERVAL": 100,
	"DISPLAY_UPDATE_INTERVAL": 200,

	"WEB_SERVER_PORT": 8080,
	"WEB_STATIC_DIR":  "web",

	"LOG_LEVEL": "info",
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get().
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the KEY=VALUE configuration file and returns a Config struct.
// Environment variables named HUNT_<KEY> take precedence over the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	// HUNT_MQTT_BROKER etc. override the file
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if unknown := unknownKeys(v); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown config key(s): %s", strings.Join(unknown, ", "))
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// unknownKeys lists keys present in the file that the app does not know.
func unknownKeys(v *viper.Viper) []string {
	var unknown []string
	for _, key := range v.AllKeys() {
		if _, ok := defaults[strings.ToUpper(key)]; !ok {
			unknown = append(unknown, strings.ToUpper(key))
		}
	}
	sort.Strings(unknown)
	return unknown
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		MQTTBroker:            v.GetString("MQTT_BROKER"),
		MQTTClientIDGPS:       v.GetString("MQTT_CLIENT_ID_GPS"),
		MQTTClientIDHeading:   v.GetString("MQTT_CLIENT_ID_HEADING"),
		MQTTClientIDNavigator: v.GetString("MQTT_CLIENT_ID_NAVIGATOR"),
		MQTTClientIDConsole:   v.GetString("MQTT_CLIENT_ID_CONSOLE"),
		MQTTClientIDDisplay:   v.GetString("MQTT_CLIENT_ID_DISPLAY"),

		TopicGPS:       v.GetString("TOPIC_GPS"),
		TopicHeading:   v.GetString("TOPIC_HEADING"),
		TopicIndicator: v.GetString("TOPIC_INDICATOR"),
		TopicArrival:   v.GetString("TOPIC_ARRIVAL"),
		TopicCollect:   v.GetString("TOPIC_COLLECT"),
		TopicStage:     v.GetString("TOPIC_STAGE"),
		TopicNavError:  v.GetString("TOPIC_NAV_ERROR"),

		GPSSerialPort: v.GetString("GPS_SERIAL_PORT"),
		MissionsFile:  v.GetString("MISSIONS_FILE"),
		WebStaticDir:  v.GetString("WEB_STATIC_DIR"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}

	// viper's cast helpers return zero on garbage, so parse strictly.
	var err error
	if cfg.GPSBaudRate, err = intValue(v, "GPS_BAUD_RATE"); err != nil {
		return nil, err
	}
	if cfg.HeadingSampleInterval, err = intValue(v, "HEADING_SAMPLE_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.DisplayUpdateInterval, err = intValue(v, "DISPLAY_UPDATE_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.WebServerPort, err = intValue(v, "WEB_SERVER_PORT"); err != nil {
		return nil, err
	}
	if cfg.ArrivalRadiusMeters, err = floatValue(v, "ARRIVAL_RADIUS_METERS"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func floatValue(v *viper.Viper, key string) (float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.MissionsFile == "" {
		return fmt.Errorf("MISSIONS_FILE is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	if c.ArrivalRadiusMeters <= 0 {
		return fmt.Errorf("ARRIVAL_RADIUS_METERS must be positive, got %g", c.ArrivalRadiusMeters)
	}
	if c.HeadingSampleInterval <= 0 {
		return fmt.Errorf("HEADING_SAMPLE_INTERVAL must be positive, got %d", c.HeadingSampleInterval)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
