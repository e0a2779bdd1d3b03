package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"glove_go/internal/config"
	"glove_go/internal/models"
	"glove_go/pkg/logger"
)

// Service publica o último estado da luva no Redis para consumidores
// externos: chaves de valor atual (snapshot, status, transporte) e um canal
// pub/sub com cada snapshot serializado. Sem histórico: apenas o valor mais
// recente é mantido.
type Service struct {
	client    *redis.Client
	ctx       context.Context
	cancel    context.CancelFunc
	prefix    string
	config    config.RedisConfig
	connected bool
	mutex     sync.RWMutex
}

// NewService cria um novo serviço Redis. Com Redis desabilitado ou fora do
// ar o serviço opera em modo offline e todas as escritas viram no-ops.
func NewService(cfg config.RedisConfig) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("Serviço Redis desabilitado por configuração")
		return &Service{
			config:    cfg,
			connected: false,
		}, nil
	}

	// Criar contexto cancelável
	ctx, cancel := context.WithCancel(context.Background())

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	service := &Service{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		prefix: cfg.Prefix,
		config: cfg,
	}

	// Testar conexão
	if err := service.TestConnection(); err != nil {
		logger.Warnf("Aviso: %v. O Redis será utilizado em modo offline.", err)
		service.connected = false
		return service, nil
	}

	service.connected = true
	return service, nil
}

// TestConnection testa a conexão com o Redis
func (s *Service) TestConnection() error {
	if !s.config.Enabled {
		return fmt.Errorf("serviço Redis desabilitado")
	}

	result, err := s.client.Ping(s.ctx).Result()
	if err != nil {
		return fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	logger.Infof("Conexão com o Redis estabelecida. Resposta: %s", result)
	s.connected = true
	return nil
}

// IsConnected verifica se o serviço está conectado
func (s *Service) IsConnected() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.connected && s.config.Enabled
}

// WriteSnapshot publica o snapshot de telemetria como valor atual e no
// canal pub/sub de telemetria
func (s *Service) WriteSnapshot(snapshot models.TelemetrySnapshot) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("erro ao serializar snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(s.ctx, fmt.Sprintf("%s:telemetry", s.prefix), string(jsonData), 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:timestamp", s.prefix),
		snapshot.LastUpdate.UnixNano()/int64(time.Millisecond), 0)
	pipe.Publish(s.ctx, fmt.Sprintf("%s:telemetry:channel", s.prefix), string(jsonData))

	if _, err := pipe.Exec(s.ctx); err != nil {
		s.markDisconnected()
		return fmt.Errorf("erro ao escrever snapshot no Redis: %w", err)
	}

	return nil
}

// WriteStatus publica o estado do transporte como valor atual e no canal
// pub/sub de status
func (s *Service) WriteStatus(status models.TransportStatus) error {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil
	}
	s.mutex.RUnlock()

	jsonData, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("erro ao serializar status: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(s.ctx, fmt.Sprintf("%s:transport", s.prefix), status.Transport, 0)
	pipe.Set(s.ctx, fmt.Sprintf("%s:status", s.prefix), string(jsonData), 0)
	pipe.Publish(s.ctx, fmt.Sprintf("%s:status:channel", s.prefix), string(jsonData))

	if _, err := pipe.Exec(s.ctx); err != nil {
		s.markDisconnected()
		return fmt.Errorf("erro ao escrever status no Redis: %w", err)
	}

	return nil
}

// GetSnapshot obtém o último snapshot publicado no Redis
func (s *Service) GetSnapshot() (*models.TelemetrySnapshot, error) {
	s.mutex.RLock()
	if !s.connected || !s.config.Enabled {
		s.mutex.RUnlock()
		return nil, fmt.Errorf("Redis não conectado ou desabilitado")
	}
	s.mutex.RUnlock()

	dataCmd := s.client.Get(s.ctx, fmt.Sprintf("%s:telemetry", s.prefix))
	if dataCmd.Err() != nil {
		return nil, fmt.Errorf("erro ao obter snapshot: %w", dataCmd.Err())
	}

	var snapshot models.TelemetrySnapshot
	if err := json.Unmarshal([]byte(dataCmd.Val()), &snapshot); err != nil {
		return nil, fmt.Errorf("erro ao decodificar snapshot: %w", err)
	}

	return &snapshot, nil
}

// markDisconnected registra a perda de conexão após uma escrita falhada
func (s *Service) markDisconnected() {
	s.mutex.Lock()
	s.connected = false
	s.mutex.Unlock()
}

// Shutdown encerra graciosamente o serviço Redis
func (s *Service) Shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Errorf("Erro ao fechar conexão com Redis: %v", err)
		} else {
			logger.Info("Conexão com o Redis fechada")
		}
	}

	s.connected = false
}
