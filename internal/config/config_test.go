package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hunt_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	path := writeConfig(t, `
# minimal
MQTT_BROKER=tcp://broker:1883
MISSIONS_FILE=missions.yaml
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, "missions.yaml", cfg.MissionsFile)
	assert.Equal(t, "hunt/gps", cfg.TopicGPS)
	assert.Equal(t, "hunt/heading", cfg.TopicHeading)
	assert.Equal(t, "hunt/indicator", cfg.TopicIndicator)
	assert.Equal(t, "hunt/arrival", cfg.TopicArrival)
	assert.Equal(t, "hunt/collect", cfg.TopicCollect)
	assert.Equal(t, "hunt-navigator", cfg.MQTTClientIDNavigator)
	assert.Equal(t, "/dev/serial0", cfg.GPSSerialPort)
	assert.Equal(t, 9600, cfg.GPSBaudRate)
	assert.Equal(t, 20.0, cfg.ArrivalRadiusMeters)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, 100, cfg.HeadingSampleInterval)
	assert.Equal(t, 200, cfg.DisplayUpdateInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MISSIONS_FILE=/etc/hunt/missions.json
GPS_BAUD_RATE=115200
ARRIVAL_RADIUS_METERS=12.5
TOPIC_INDICATOR=game/arrow
LOG_LEVEL=debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.GPSBaudRate)
	assert.Equal(t, 12.5, cfg.ArrivalRadiusMeters)
	assert.Equal(t, "game/arrow", cfg.TopicIndicator)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingRequired(t *testing.T) {
	path := writeConfig(t, "MISSIONS_FILE=missions.yaml\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT_BROKER is required")

	path = writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSIONS_FILE is required")
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MISSIONS_FILE=missions.yaml
IMU_LEFT_SPI_DEVICE=/dev/spidev0.0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMU_LEFT_SPI_DEVICE")
}

func TestLoad_InvalidNumber(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MISSIONS_FILE=missions.yaml
GPS_BAUD_RATE=fast
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid GPS_BAUD_RATE")
}

func TestLoad_NonPositiveRadius(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://localhost:1883
MISSIONS_FILE=missions.yaml
ARRIVAL_RADIUS_METERS=0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARRIVAL_RADIUS_METERS")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "hunt_config.txt"))
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "missions.yaml", cfg.MissionsFile)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
MQTT_BROKER=tcp://broker:1883
MISSIONS_FILE=missions.yaml
ARRIVAL_RADIUS_METERS=12.5
`)
	t.Setenv("HUNT_MQTT_BROKER", "tcp://field-pi:1883")
	t.Setenv("HUNT_ARRIVAL_RADIUS_METERS", "30")
	t.Setenv("HUNT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://field-pi:1883", cfg.MQTTBroker)
	assert.Equal(t, 30.0, cfg.ArrivalRadiusMeters)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "missions.yaml", cfg.MissionsFile)
}
