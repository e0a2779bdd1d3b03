package websocket

import (
	"context"
	"sync"
	"time"

	"glove_go/internal/models"
	"glove_go/pkg/logger"
)

// CommandSink recebe o texto de um comando a encaminhar ao dispositivo
type CommandSink func(text string)

// SnapshotSource retorna o snapshot de telemetria atual
type SnapshotSource func() models.TelemetrySnapshot

// Hub gerencia todas as conexões WebSocket e distribuição de mensagens
type Hub struct {
	// Clientes registrados
	clients map[*Client]bool

	// Canal para registrar clientes
	register chan *Client

	// Canal para desregistrar clientes
	unregister chan *Client

	// Canal para mensagens de broadcast
	broadcast chan []byte

	// Comando recebido dos clientes
	commands chan models.ClientCommand

	// Mutex para operações concorrentes no mapa de clientes
	mu sync.RWMutex

	// Encaminhamento de comandos ao dispositivo e leitura de snapshot,
	// injetados pelo servidor na montagem
	commandSink    CommandSink
	snapshotSource SnapshotSource
	displayCap     int
	hookLock       sync.RWMutex

	// Último snapshot enviado (para evitar duplicação)
	lastTelemetrySent time.Time
	telemetryLock     sync.Mutex

	// Estatísticas
	stats struct {
		totalMessages      int64
		totalClients       int64
		messagesPerSecond  float64
		lastStatsReset     time.Time
		messagesSinceReset int64
	}
	statsLock sync.Mutex

	// Sinal para encerramento do hub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub cria uma nova instância do Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256), // Buffer para evitar bloqueios
		commands:   make(chan models.ClientCommand, 100),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.stats.lastStatsReset = time.Now()

	return h
}

// SetCommandSink define o destino dos comandos "send_command" dos clientes
func (h *Hub) SetCommandSink(sink CommandSink) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()
	h.commandSink = sink
}

// SetSnapshotSource define a fonte de snapshot para "get_telemetry"
func (h *Hub) SetSnapshotSource(source SnapshotSource) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()
	h.snapshotSource = source
}

// SetDisplayCap define o limite de linhas anunciado aos clientes na conexão
func (h *Hub) SetDisplayCap(limit int) {
	h.hookLock.Lock()
	defer h.hookLock.Unlock()
	h.displayCap = limit
}

// Run inicia o loop principal do hub para gerenciar clientes e mensagens
func (h *Hub) Run() {
	logger.Info("Iniciando WebSocket Hub")

	// Ticker para estatísticas periódicas
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	// Ticker para manter conexões ativas
	keepaliveTicker := time.NewTicker(5 * time.Second)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			logger.Info("Encerrando WebSocket Hub")
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()

			logger.Infof("Novo cliente WebSocket conectado. ID: %s. Total: %d", client.id, clientCount)

			h.statsLock.Lock()
			h.stats.totalClients++
			h.statsLock.Unlock()

			// Enviar dados iniciais para o cliente
			go h.sendInitialDataToClient(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				logger.Infof("Cliente WebSocket desconectado. ID: %s. Total: %d", client.id, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			clientCount := len(h.clients)

			h.statsLock.Lock()
			h.stats.totalMessages++
			h.stats.messagesSinceReset++
			h.statsLock.Unlock()

			if clientCount == 0 {
				h.mu.RUnlock()
				continue // Nenhum cliente conectado, pular broadcast
			}

			deadClients := make([]*Client, 0, 4)

			for client := range h.clients {
				select {
				case client.send <- message:
					// Mensagem enviada com sucesso
				default:
					// Canal do cliente está cheio, marcar para desconexão
					deadClients = append(deadClients, client)
				}
			}
			h.mu.RUnlock()

			// Remover clientes mortos direto no loop do hub; reenviar para
			// o próprio canal unregister bloquearia o Run
			if len(deadClients) > 0 {
				h.mu.Lock()
				for _, client := range deadClients {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
						logger.Infof("Cliente WebSocket removido por fila cheia. ID: %s. Total: %d", client.id, len(h.clients))
					}
				}
				h.mu.Unlock()
			}

		case cmd := <-h.commands:
			go h.handleClientCommand(cmd)

		case <-statsTicker.C:
			h.statsLock.Lock()
			elapsed := time.Since(h.stats.lastStatsReset).Seconds()
			if elapsed > 0 {
				h.stats.messagesPerSecond = float64(h.stats.messagesSinceReset) / elapsed
			}
			h.stats.messagesSinceReset = 0
			h.stats.lastStatsReset = time.Now()

			mps := h.stats.messagesPerSecond
			total := h.stats.totalMessages
			h.statsLock.Unlock()

			h.mu.RLock()
			clientCount := len(h.clients)
			h.mu.RUnlock()

			logger.Infof("Estatísticas WebSocket: %d clientes, %.2f msgs/seg, total: %d mensagens",
				clientCount, mps, total)

		case <-keepaliveTicker.C:
			h.sendPingToAllClients()
		}
	}
}

// BroadcastTelemetry envia um snapshot de telemetria para todos os clientes.
// Snapshots sem mudança desde o último envio são descartados.
func (h *Hub) BroadcastTelemetry(snapshot models.TelemetrySnapshot) {
	h.telemetryLock.Lock()
	if !snapshot.LastUpdate.After(h.lastTelemetrySent) {
		h.telemetryLock.Unlock()
		return
	}
	h.lastTelemetrySent = snapshot.LastUpdate
	h.telemetryLock.Unlock()

	if jsonMessage, err := SerializeMessage(NewTelemetryMessage(snapshot)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de telemetria", err)
	}
}

// BroadcastConsole envia um lote de texto do console CLI para todos os clientes
func (h *Hub) BroadcastConsole(lines []string) {
	if len(lines) == 0 {
		return
	}

	if jsonMessage, err := SerializeMessage(NewConsoleMessage(lines)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem do console", err)
	}
}

// BroadcastMonitor envia um lote de linhas de log do dispositivo para todos os clientes
func (h *Hub) BroadcastMonitor(lines []string) {
	if len(lines) == 0 {
		return
	}

	if jsonMessage, err := SerializeMessage(NewMonitorMessage(lines)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem do monitor", err)
	}
}

// BroadcastStatus envia a transição de estado do transporte para todos os clientes
func (h *Hub) BroadcastStatus(status models.TransportStatus) {
	if jsonMessage, err := SerializeMessage(NewStatusMessage(status)); err == nil {
		h.broadcast <- jsonMessage
	} else {
		logger.Error("Erro ao serializar mensagem de status", err)
	}
}

// handleClientCommand processa comandos recebidos dos clientes
func (h *Hub) handleClientCommand(cmd models.ClientCommand) {
	logger.Debugf("Comando recebido do cliente %s: %s", cmd.ClientID, cmd.Command)

	switch cmd.Command {
	case "send_command":
		h.forwardDeviceCommand(cmd)
	case "get_telemetry":
		h.sendCurrentTelemetry(cmd.ClientID)
	case "ping":
		h.sendPong(cmd.ClientID, cmd.Params)
	default:
		logger.Warnf("Comando desconhecido: %s", cmd.Command)
	}
}

// forwardDeviceCommand extrai o texto do comando e o encaminha ao dispositivo
func (h *Hub) forwardDeviceCommand(cmd models.ClientCommand) {
	params, ok := cmd.Params.(map[string]interface{})
	if !ok {
		return
	}
	text, ok := params["text"].(string)
	if !ok || text == "" {
		return
	}

	h.hookLock.RLock()
	sink := h.commandSink
	h.hookLock.RUnlock()

	if sink == nil {
		logger.Warn("Comando do cliente descartado: nenhum transporte ativo")
		return
	}
	sink(text)
}

// sendCurrentTelemetry envia o snapshot atual apenas para o cliente solicitante
func (h *Hub) sendCurrentTelemetry(clientID string) {
	h.hookLock.RLock()
	source := h.snapshotSource
	h.hookLock.RUnlock()
	if source == nil {
		return
	}

	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	if jsonMsg, err := SerializeMessage(NewTelemetryMessage(source())); err == nil {
		h.trySend(client, jsonMsg)
	}
}

// sendPong envia resposta de pong para um cliente específico
func (h *Hub) sendPong(clientID string, params interface{}) {
	client := h.getClientByID(clientID)
	if client == nil {
		return
	}

	// Extrair timestamp do ping
	var pingTime int64
	if paramsMap, ok := params.(map[string]interface{}); ok {
		if timeVal, ok := paramsMap["time"].(float64); ok {
			pingTime = int64(timeVal)
		}
	}

	if jsonMsg, err := SerializeMessage(CreatePongResponse(pingTime)); err == nil {
		h.trySend(client, jsonMsg)
	}
}

// sendInitialDataToClient envia dados iniciais para um novo cliente
func (h *Hub) sendInitialDataToClient(client *Client) {
	h.hookLock.RLock()
	source := h.snapshotSource
	displayCap := h.displayCap
	h.hookLock.RUnlock()

	welcome := models.WebSocketMessage{
		Type:      "welcome",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message":    "Conectado ao servidor G-Love Monitor",
			"clientId":   client.id,
			"displayCap": displayCap,
		},
	}

	if jsonMsg, err := SerializeMessage(welcome); err == nil {
		h.trySend(client, jsonMsg)
	}

	// Entregar o estado atual imediatamente, sem esperar o próximo broadcast
	if source == nil {
		return
	}

	if jsonMsg, err := SerializeMessage(NewTelemetryMessage(source())); err == nil {
		h.trySend(client, jsonMsg)
	}
}

// Shutdown encerra graciosamente o hub
func (h *Hub) Shutdown() {
	h.cancel()
	// Aguardar um pequeno tempo para processamento finalizar
	time.Sleep(100 * time.Millisecond)
}

// closeAllClients fecha todas as conexões dos clientes
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("Fechando todas as conexões de clientes WebSocket")
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// ClientCount retorna o número atual de clientes conectados
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// trySend entrega a mensagem ao cliente apenas se ele ainda estiver
// registrado. O fechamento do canal send acontece sob o mesmo lock, então a
// verificação de associação elimina o envio para canal fechado; fila cheia
// descarta em vez de bloquear.
func (h *Hub) trySend(client *Client, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- message:
	default:
	}
}

// getClientByID retorna um cliente pelo seu ID
func (h *Hub) getClientByID(clientID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id == clientID {
			return client
		}
	}
	return nil
}

// sendPingToAllClients envia ping para todos os clientes
func (h *Hub) sendPingToAllClients() {
	ping := models.PingMessage{
		WebSocketMessage: models.WebSocketMessage{
			Type:      "ping",
			Timestamp: time.Now(),
		},
		Time: time.Now().UnixNano() / int64(time.Millisecond),
	}

	if jsonMsg, err := SerializeMessage(ping); err == nil {
		h.mu.RLock()
		if len(h.clients) > 0 {
			h.broadcast <- jsonMsg
		}
		h.mu.RUnlock()
	}
}
