package websocket

import (
	"encoding/json"
	"time"

	"glove_go/internal/models"
)

// Funções utilitárias para criação e processamento de mensagens WebSocket

// NewTelemetryMessage cria uma mensagem com o snapshot de telemetria da luva
func NewTelemetryMessage(snapshot models.TelemetrySnapshot) *models.TelemetryMessage {
	return &models.TelemetryMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "telemetry",
			Timestamp: time.Now(),
		},
		Snapshot: snapshot,
	}
}

// NewConsoleMessage cria uma mensagem com um lote de texto do console CLI
func NewConsoleMessage(lines []string) *models.ConsoleMessage {
	return &models.ConsoleMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "cli",
			Timestamp: time.Now(),
		},
		Lines: lines,
	}
}

// NewMonitorMessage cria uma mensagem com um lote de linhas de log do dispositivo
func NewMonitorMessage(lines []string) *models.MonitorMessage {
	return &models.MonitorMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "log",
			Timestamp: time.Now(),
		},
		Lines: lines,
	}
}

// NewStatusMessage cria uma mensagem de transição de estado do transporte
func NewStatusMessage(status models.TransportStatus) *models.StatusMessage {
	return &models.StatusMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "status",
			Timestamp: time.Now(),
		},
		Transport: status.Transport,
		Message:   status.LastMessage,
	}
}

// NewErrorMessage cria uma mensagem de erro
func NewErrorMessage(message string, errorCode string) models.WebSocketMessage {
	return models.WebSocketMessage{
		Type:      "error",
		Timestamp: time.Now(),
		Error:     message,
		Data: map[string]string{
			"code": errorCode,
		},
	}
}

// SerializeMessage serializa uma mensagem para JSON
func SerializeMessage(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}

// CreatePongResponse cria uma resposta para um ping do cliente
func CreatePongResponse(pingTime int64) *models.PongMessage {
	return &models.PongMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		},
		Time:       pingTime,
		ServerTime: time.Now().UnixNano() / int64(time.Millisecond),
	}
}
