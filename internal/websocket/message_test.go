package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glove_go/internal/models"
)

func TestNewTelemetryMessageSerialization(t *testing.T) {
	w := 1.0
	snapshot := models.TelemetrySnapshot{
		Fusion:       &models.Quaternion{W: w},
		Active:       &models.Quaternion{W: w},
		ActiveSource: models.SourceFusion,
		LastUpdate:   time.Now(),
	}

	data, err := SerializeMessage(NewTelemetryMessage(snapshot))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "telemetry", decoded["type"])

	snap, ok := decoded["snapshot"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fusion", snap["activeSource"])

	// Campos nunca recebidos ficam fora do JSON
	assert.NotContains(t, snap, "punch")
	assert.NotContains(t, snap, "batteryPercent")
}

func TestBatchMessages(t *testing.T) {
	console := NewConsoleMessage([]string{"glove> ok\n"})
	assert.Equal(t, "cli", console.Type)
	assert.Equal(t, []string{"glove> ok\n"}, console.Lines)

	monitor := NewMonitorMessage([]string{"I (1) WIFI: up"})
	assert.Equal(t, "log", monitor.Type)
}

func TestStatusMessageCarriesTransport(t *testing.T) {
	msg := NewStatusMessage(models.TransportStatus{
		Transport:   "BLE (conectado)",
		LastMessage: "BLE conectado. Recebendo notificações...",
		Timestamp:   time.Now(),
	})

	assert.Equal(t, "status", msg.Type)
	assert.Equal(t, "BLE (conectado)", msg.Transport)
	assert.NotEmpty(t, msg.Message)
}

func TestCreatePongEchoesPingTime(t *testing.T) {
	pong := CreatePongResponse(12345)
	assert.Equal(t, "pong", pong.Type)
	assert.Equal(t, int64(12345), pong.Time)
	assert.NotZero(t, pong.ServerTime)
}
