package glove

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"glove_go/internal/config"
	"glove_go/internal/models"
	"glove_go/internal/telemetry"
	"glove_go/internal/transport"
	"glove_go/pkg/logger"
)

// Service orquestra o pipeline completo da luva: uma sessão de transporte
// alimenta o enquadrador, que entrega registros ao roteador, que atualiza o
// armazém de telemetria e as filas de saída. Exatamente uma sessão de
// transporte existe por vez; a escolha acontece no arranque.
type Service struct {
	cfg       *config.Config
	telemetry *telemetry.State

	cliQueue    *Queue
	logQueue    *Queue
	statusQueue *Queue

	framer *Framer
	router *Router

	mu      sync.Mutex
	session transport.Session
	running bool

	descMu        sync.RWMutex
	transportDesc string
	lastStatus    string
	lastStatusAt  time.Time
}

// NewService monta o pipeline a partir da configuração e do armazém de telemetria
func NewService(cfg *config.Config, state *telemetry.State) *Service {
	queueCap := cfg.Transport.QueueCap

	s := &Service{
		cfg:           cfg,
		telemetry:     state,
		cliQueue:      NewQueue(queueCap),
		logQueue:      NewQueue(queueCap),
		statusQueue:   NewQueue(queueCap),
		transportDesc: "Desconectado",
	}

	filter := NewLogFilter(cfg.Logs.ShowAll, cfg.Logs.Tags)
	s.router = NewRouter(state, s.cliQueue, s.logQueue, filter)
	s.framer = NewFramer(cfg.Transport.FragmentThreshold, s.router.HandleRecord, s.router.FlushFragment)

	return s
}

// Start escolhe o transporte conforme a preferência configurada e inicia a
// sessão. Em modo "auto" o BLE é sondado primeiro; sem dispositivo BLE
// encontrado a serial assume.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	session, err := s.openTransport()
	if err != nil {
		return err
	}

	s.session = session
	s.running = true
	logger.Infof("Pipeline da luva iniciado (transporte: %s)", session.Name())
	return nil
}

// openTransport aplica a preferência de transporte: "serial" e "ble" são
// exclusivos; "auto" tenta BLE e recorre à serial
func (s *Service) openTransport() (transport.Session, error) {
	tcfg := s.cfg.Transport

	if !tcfg.SerialOnly() {
		bleCfg := tcfg.BLE
		if addr, ok := transport.ProbeTarget(bleCfg, s.pushStatus); ok {
			bleCfg.Address = addr
			session := transport.NewBLESession(bleCfg, s.framer, s.pushStatus)
			if err := session.Start(); err == nil {
				return session, nil
			} else if tcfg.BLEOnly() {
				return nil, fmt.Errorf("sessão BLE indisponível: %w", err)
			}
		} else if tcfg.BLEOnly() {
			return nil, fmt.Errorf("nenhum dispositivo BLE encontrado e o modo exige BLE")
		}
		s.pushStatus("BLE: recorrendo à serial.")
	}

	session := transport.NewSerialSession(tcfg.Serial, s.framer, s.pushStatus)
	if err := session.Start(); err != nil {
		return nil, fmt.Errorf("sessão serial indisponível: %w", err)
	}
	return session, nil
}

// Stop encerra a sessão de transporte ativa. Idempotente.
func (s *Service) Stop() {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.running = false
	s.mu.Unlock()

	if session != nil {
		session.Stop()
		logger.Info("Pipeline da luva encerrado")
	}
}

// IsRunning indica se o pipeline está ativo
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SendCommand encaminha um comando de texto à sessão ativa, melhor esforço
func (s *Service) SendCommand(text string) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		return
	}
	session.Send(text)
}

// Snapshot retorna a cópia pontual do estado de telemetria
func (s *Service) Snapshot() models.TelemetrySnapshot {
	return s.telemetry.Snapshot()
}

// DrainCLI retira todas as linhas pendentes da fila do console interativo
func (s *Service) DrainCLI() []string {
	return s.cliQueue.Drain()
}

// DrainLog retira todas as linhas pendentes da fila do monitor de logs
func (s *Service) DrainLog() []string {
	return s.logQueue.Drain()
}

// DrainStatus retira todas as mensagens de status pendentes do transporte
func (s *Service) DrainStatus() []string {
	return s.statusQueue.Drain()
}

// TransportStatus retorna a descrição atual do transporte e a última
// mensagem de status publicada
func (s *Service) TransportStatus() models.TransportStatus {
	s.descMu.RLock()
	defer s.descMu.RUnlock()
	return models.TransportStatus{
		Transport:   s.transportDesc,
		LastMessage: s.lastStatus,
		Timestamp:   s.lastStatusAt,
	}
}

// DisplayCap expõe o limite de linhas sugerido aos consumidores de exibição
func (s *Service) DisplayCap() int {
	return s.cfg.Transport.DisplayCap
}

// pushStatus publica a mensagem na fila de status e atualiza a descrição do
// transporte derivada dela. Chamado pelas goroutines das sessões.
func (s *Service) pushStatus(message string) {
	s.statusQueue.Push(message)
	s.applyStatus(message)
	logger.Debugf("Transporte: %s", message)
}

// applyStatus deriva a descrição curta do transporte a partir da mensagem de
// ciclo de vida, na ordem de especificidade
func (s *Service) applyStatus(message string) {
	normalized := strings.TrimSpace(message)
	lower := strings.ToLower(normalized)

	var desc string
	switch {
	case strings.HasPrefix(lower, "serial conectado:"):
		desc = "Serial " + strings.TrimSpace(normalized[len("Serial conectado:"):])
	case strings.Contains(lower, "serial") && strings.Contains(lower, "aguardando"):
		desc = "Serial (aguardando dispositivo)"
	case strings.Contains(lower, "recorrendo à serial"):
		desc = "Serial (conectando)"
	case strings.Contains(lower, "serial") && (strings.Contains(lower, "desconectado") || strings.Contains(lower, "falha")):
		desc = "Serial (desconectado)"
	case strings.HasPrefix(lower, "ble conectado"):
		desc = "BLE (conectado)"
	case strings.HasPrefix(lower, "ble: encontrado"):
		desc = "BLE (conectando)"
	case strings.HasPrefix(lower, "ble: procurando"):
		desc = "BLE (buscando)"
	case strings.HasPrefix(lower, "ble indisponível"):
		desc = "BLE (indisponível)"
	case strings.Contains(lower, "ble") && (strings.Contains(lower, "desconectado") || strings.Contains(lower, "não encontrado") || strings.Contains(lower, "falha")):
		desc = "BLE (reconectando)"
	}

	s.descMu.Lock()
	if desc != "" {
		s.transportDesc = desc
	}
	s.lastStatus = normalized
	s.lastStatusAt = time.Now()
	s.descMu.Unlock()
}
