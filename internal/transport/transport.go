package transport

import (
	"strings"
	"time"
)

// Sink recebe os dados brutos de uma sessão para enquadramento de linhas.
// A sessão ativa é a única dona do sink; Flush é chamado uma vez no
// encerramento para descarregar o residual pendente.
type Sink interface {
	Feed(chunk string)
	Flush()
}

// Session é um transporte bidirecional com o dispositivo. Exatamente uma
// sessão está viva por vez; a reconexão é interna e exposta apenas pelas
// mensagens de status.
type Session interface {
	// Start inicia o loop da sessão em segundo plano
	Start() error

	// Stop encerra a sessão; idempotente e com tempo limitado
	Stop()

	// Send normaliza e envia um comando de texto; melhor esforço, falhas de
	// escrita são engolidas porque o caminho de leitura detecta a queda
	Send(text string)

	// Name identifica o tipo de transporte ("serial" ou "ble")
	Name() string
}

// StatusFunc publica uma mensagem legível de ciclo de vida do transporte
type StatusFunc func(message string)

// Constantes de política das sessões
const (
	// serialRetryInterval é o intervalo de sondagem/reconexão da serial
	serialRetryInterval = 1500 * time.Millisecond

	// serialReadTimeout limita cada leitura bloqueante da serial
	serialReadTimeout = time.Second

	// bleRetryBackoff é a espera entre ciclos de busca/reconexão BLE
	bleRetryBackoff = 2 * time.Second

	// bleStatusEvery limita o log de falhas repetidas de reconexão BLE
	bleStatusEvery = 5

	// commandPollTimeout é o timeout curto da espera por comando/desconexão
	commandPollTimeout = 100 * time.Millisecond

	// DefaultWriteChunk é o tamanho mínimo de fragmento de escrita BLE,
	// usado quando nenhum tamanho negociado é conhecido
	DefaultWriteChunk = 20

	// attOverhead são os bytes de cabeçalho ATT descontados do MTU
	attOverhead = 3

	// stopJoinTimeout limita a espera pelo término da goroutine da sessão
	stopJoinTimeout = 3 * time.Second
)

// NormalizeCommand colapsa qualquer estilo de quebra de linha para um único
// terminador final e converte os internos para a forma CRLF esperada pelo
// dispositivo. Retorna vazio para entrada vazia.
func NormalizeCommand(text string) string {
	if text == "" {
		return ""
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if !strings.HasSuffix(normalized, "\n") {
		normalized += "\n"
	}
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

// WriteChunkSize calcula o tamanho de fragmento de escrita a partir do MTU
// negociado; sem MTU conhecido (ou MTU pequeno demais) vale o mínimo padrão
func WriteChunkSize(mtu int) int {
	if size := mtu - attOverhead; size > DefaultWriteChunk {
		return size
	}
	return DefaultWriteChunk
}
