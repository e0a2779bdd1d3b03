package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "auto", cfg.Transport.Mode)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Transport.Serial.Port)
	assert.Equal(t, 115200, cfg.Transport.Serial.Baud)
	assert.Equal(t, "G-Love", cfg.Transport.BLE.NameHint)
	assert.Equal(t, 256, cfg.Transport.FragmentThreshold)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Logs.ShowAll)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GLOVE_TRANSPORT_MODE", "BLE")
	t.Setenv("GLOVE_SERIAL_PORT", "/dev/ttyACM1")
	t.Setenv("GLOVE_SERIAL_BAUD", "921600")
	t.Setenv("GLOVE_BLE_NAME", "G-Love-Proto")
	t.Setenv("GLOVE_SHOW_LOGS", "true")
	t.Setenv("GLOVE_LOG_TAGS", "wifi, batt ,")
	t.Setenv("GLOVE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ble", cfg.Transport.Mode)
	assert.Equal(t, "/dev/ttyACM1", cfg.Transport.Serial.Port)
	assert.Equal(t, 921600, cfg.Transport.Serial.Baud)
	assert.Equal(t, "G-Love-Proto", cfg.Transport.BLE.NameHint)
	assert.True(t, cfg.Logs.ShowAll)
	assert.Equal(t, []string{"wifi", "batt"}, cfg.Logs.Tags)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInvalidNumericOverrideIsIgnored(t *testing.T) {
	t.Setenv("GLOVE_SERIAL_BAUD", "rapido")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.Transport.Serial.Baud)
}

func TestTransportModeHelpers(t *testing.T) {
	assert.True(t, TransportConfig{Mode: "serial"}.SerialOnly())
	assert.True(t, TransportConfig{Mode: "Serial"}.SerialOnly())
	assert.False(t, TransportConfig{Mode: "auto"}.SerialOnly())

	assert.True(t, TransportConfig{Mode: "ble"}.BLEOnly())
	assert.False(t, TransportConfig{Mode: "auto"}.BLEOnly())
}
