package glove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glove_go/internal/config"
	"glove_go/internal/telemetry"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return NewService(cfg, telemetry.NewState())
}

func TestServiceDerivesTransportDescription(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Serial conectado: /dev/ttyUSB0 @ 115200", "Serial /dev/ttyUSB0 @ 115200"},
		{"Serial aguardando dispositivo em /dev/ttyUSB0...", "Serial (aguardando dispositivo)"},
		{"Serial desconectado, reconectando: EOF", "Serial (desconectado)"},
		{"BLE conectado. Recebendo notificações...", "BLE (conectado)"},
		{"BLE desconectado, reconectando...", "BLE (reconectando)"},
		{"BLE: dispositivo não encontrado, repetindo busca...", "BLE (reconectando)"},
		{"BLE: procurando dispositivos contendo \"G-Love\" (5.0s)...", "BLE (buscando)"},
		{"BLE: encontrado G-Love (AA:BB:CC:DD:EE:FF). Conectando...", "BLE (conectando)"},
		{"BLE: recorrendo à serial.", "Serial (conectando)"},
		{"BLE indisponível: sem adaptador", "BLE (indisponível)"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			s := newTestService(t)
			s.applyStatus(tt.message)
			assert.Equal(t, tt.want, s.TransportStatus().Transport)
			assert.Equal(t, tt.message, s.TransportStatus().LastMessage)
		})
	}
}

func TestServiceUnknownStatusKeepsDescription(t *testing.T) {
	s := newTestService(t)
	s.applyStatus("Serial conectado: /dev/ttyUSB0 @ 115200")
	s.applyStatus("mensagem informativa qualquer")

	status := s.TransportStatus()
	assert.Equal(t, "Serial /dev/ttyUSB0 @ 115200", status.Transport)
	assert.Equal(t, "mensagem informativa qualquer", status.LastMessage)
}

func TestServiceStatusQueueReceivesMessages(t *testing.T) {
	s := newTestService(t)

	s.pushStatus("Serial conectado: /dev/ttyUSB0 @ 115200")
	s.pushStatus("Serial desconectado")

	assert.Equal(t, []string{
		"Serial conectado: /dev/ttyUSB0 @ 115200",
		"Serial desconectado",
	}, s.DrainStatus())
}

func TestServicePipelineEndToEnd(t *testing.T) {
	s := newTestService(t)

	// Alimentar o enquadrador diretamente, como uma sessão faria
	s.framer.Feed("FUSION q:[1,0,0,0]\r\nglove> ok\r\n")

	snap := s.Snapshot()
	require.NotNil(t, snap.Fusion)
	assert.Equal(t, "fusion", snap.ActiveSource)

	// As duas linhas são texto livre: ambas chegam ao console CLI
	cli := s.DrainCLI()
	require.Len(t, cli, 2)
	assert.Equal(t, "FUSION q:[1,0,0,0]\n", cli[0])
	assert.Equal(t, "glove> ok\n", cli[1])
}
