package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"vazio", "", ""},
		{"sem terminador", "led on", "led on\r\n"},
		{"lf simples", "led on\n", "led on\r\n"},
		{"crlf preservado", "led on\r\n", "led on\r\n"},
		{"cr isolado", "a\rb", "a\r\nb\r\n"},
		{"linhas internas", "a\nb\n", "a\r\nb\r\n"},
		{"misto", "a\r\nb\rc", "a\r\nb\r\nc\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCommand(tt.in))
		})
	}
}

func TestWriteChunkSize(t *testing.T) {
	// MTU desconhecido ou pequeno demais cai no fragmento mínimo
	assert.Equal(t, DefaultWriteChunk, WriteChunkSize(0))
	assert.Equal(t, DefaultWriteChunk, WriteChunkSize(23))

	// MTU negociado desconta o cabeçalho ATT
	assert.Equal(t, 24, WriteChunkSize(27))
	assert.Equal(t, 182, WriteChunkSize(185))
}
