package websocket

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glove_go/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestTrySendOnlyReachesRegisteredClients(t *testing.T) {
	h := NewHub()
	client := &Client{hub: h, send: make(chan []byte, 1), id: "c1"}

	// Cliente ainda não registrado: a mensagem é descartada
	h.trySend(client, []byte(`{}`))
	assert.Empty(t, client.send)

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.trySend(client, []byte(`{"type":"welcome"}`))
	require.Len(t, client.send, 1)

	// Fila cheia: descarta em vez de bloquear
	h.trySend(client, []byte(`{}`))
	assert.Len(t, client.send, 1)
}

func TestTrySendAfterUnregisterDoesNotPanic(t *testing.T) {
	h := NewHub()
	client := &Client{hub: h, send: make(chan []byte, 1), id: "c2"}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	// Desregistro: remoção e fechamento do canal sob o mesmo lock
	h.mu.Lock()
	delete(h.clients, client)
	close(client.send)
	h.mu.Unlock()

	// Um envio atrasado (dados iniciais, pong) não pode estourar no canal fechado
	assert.NotPanics(t, func() {
		h.trySend(client, []byte(`{}`))
	})
}
