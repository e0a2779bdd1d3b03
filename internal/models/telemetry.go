package models

import "time"

// Quaternion representa uma orientação como quaternião unitário (w, x, y, z)
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3 representa um vetor de três componentes
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PunchEvent representa um evento de soco detectado pela luva
type PunchEvent struct {
	Velocity      float64 `json:"velocity"`      // Velocidade de pico (m/s)
	HorizontalDeg float64 `json:"horizontalDeg"` // Ângulo horizontal (graus)
	VerticalDeg   float64 `json:"verticalDeg"`   // Ângulo vertical (graus)
}

// FlexReading representa uma leitura do sensor de flexão
type FlexReading struct {
	Value     int `json:"value"`     // Índice/valor reportado pelo sensor
	RawMedian int `json:"rawMedian"` // Mediana bruta antes do mapeamento
	MIDI      int `json:"midi"`      // Valor de controle mapeado (0-127)
}

// Fontes de orientação possíveis no snapshot
const (
	SourceFusion = "fusion"
	SourceSFLP   = "sflp"
)

// TelemetrySnapshot é uma cópia imutável do último estado conhecido da luva.
// Todos os campos opcionais são ponteiros: nil significa "nunca recebido".
type TelemetrySnapshot struct {
	Fusion       *Quaternion `json:"fusion,omitempty"`
	SFLP         *Quaternion `json:"sflp,omitempty"`
	Active       *Quaternion `json:"active,omitempty"`
	ActiveSource string      `json:"activeSource,omitempty"` // "fusion" ou "sflp"

	Position     *Vector3  `json:"position,omitempty"`
	PositionTime time.Time `json:"positionTime,omitempty"`

	Mag     *Vector3  `json:"mag,omitempty"`
	MagTime time.Time `json:"magTime,omitempty"`

	Punch     *PunchEvent `json:"punch,omitempty"`
	PunchTime time.Time   `json:"punchTime,omitempty"`

	Flex     *FlexReading `json:"flex,omitempty"`
	FlexTime time.Time    `json:"flexTime,omitempty"`

	BatteryPercent *float64  `json:"batteryPercent,omitempty"`
	BatteryVolts   *float64  `json:"batteryVolts,omitempty"`
	BatteryTime    time.Time `json:"batteryTime,omitempty"`

	RSSI     *int      `json:"rssi,omitempty"`
	RSSITime time.Time `json:"rssiTime,omitempty"`

	LastUpdate time.Time `json:"lastUpdate"`
}

// TransportStatus representa o estado atual do transporte ativo
type TransportStatus struct {
	Transport   string    `json:"transport"`             // Descrição curta, ex: "BLE (conectado)"
	LastMessage string    `json:"lastMessage,omitempty"` // Última mensagem de status emitida
	Timestamp   time.Time `json:"timestamp"`
}
