package models

import "time"

// WebSocketMessage representa a estrutura base de todas as mensagens WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`            // Tipo da mensagem: "telemetry", "cli", "log", "status", etc.
	Timestamp time.Time   `json:"timestamp"`       // Timestamp da mensagem
	Data      interface{} `json:"data,omitempty"`  // Dados adicionais específicos do tipo
	Error     string      `json:"error,omitempty"` // Mensagem de erro, se houver
}

// TelemetryMessage carrega um snapshot completo de telemetria da luva
type TelemetryMessage struct {
	WebSocketMessage
	Snapshot TelemetrySnapshot `json:"snapshot"`
}

// ConsoleMessage carrega um lote de texto destinado ao console CLI
type ConsoleMessage struct {
	WebSocketMessage
	Lines []string `json:"lines"`
}

// MonitorMessage carrega um lote de linhas de log estruturado do dispositivo
type MonitorMessage struct {
	WebSocketMessage
	Lines []string `json:"lines"`
}

// StatusMessage é uma mensagem específica para transições de estado do transporte
type StatusMessage struct {
	WebSocketMessage
	Transport string `json:"transport"`
	Message   string `json:"message"`
}

// CommandMessage é uma mensagem de comando do cliente para o servidor
type CommandMessage struct {
	Type   string      `json:"type"`             // Tipo de comando: "send_command", "ping", etc.
	Params interface{} `json:"params,omitempty"` // Parâmetros adicionais
	ID     string      `json:"id,omitempty"`     // ID opcional para correlacionar solicitações/respostas
}

// ClientCommand representa um comando enviado pelo cliente
type ClientCommand struct {
	Command  string      `json:"command"`
	Params   interface{} `json:"params,omitempty"`
	ClientID string      `json:"-"` // Usado internamente, não enviado no JSON
}

// PingMessage representa um ping enviado pelo cliente
type PingMessage struct {
	WebSocketMessage
	Time int64 `json:"time"` // Timestamp em milissegundos
}

// PongMessage representa um pong enviado pelo servidor
type PongMessage struct {
	WebSocketMessage
	Time       int64 `json:"time"`       // Timestamp original do ping
	ServerTime int64 `json:"serverTime"` // Timestamp do servidor em milissegundos
}
