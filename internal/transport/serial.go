package transport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"glove_go/internal/config"
)

// Indireção sobre o go.bug.st/serial; os testes injetam enumeração e
// abertura de porta falsas por aqui
var (
	listPorts = serial.GetPortsList
	openPort  = func(name string, mode *serial.Mode) (serial.Port, error) {
		return serial.Open(name, mode)
	}
)

// SerialSession mantém uma conexão serial com o dispositivo, reconectando
// automaticamente quando a porta desaparece ou a leitura falha. Emite uma
// única mensagem de status por sequência de tentativas falhadas, para não
// inundar o canal de status durante uma ausência longa.
type SerialSession struct {
	cfg    config.SerialConfig
	sink   Sink
	status StatusFunc

	mu   sync.Mutex
	port serial.Port

	retry time.Duration

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewSerialSession cria uma sessão serial ainda não iniciada
func NewSerialSession(cfg config.SerialConfig, sink Sink, status StatusFunc) *SerialSession {
	return &SerialSession{
		cfg:    cfg,
		sink:   sink,
		status: status,
		retry:  serialRetryInterval,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name retorna o identificador do transporte
func (s *SerialSession) Name() string {
	return "serial"
}

// Start inicia o loop de conexão/leitura em segundo plano
func (s *SerialSession) Start() error {
	go s.run()
	return nil
}

// Stop encerra a sessão e aguarda o término do loop. Fechar a porta aqui
// desbloqueia uma leitura em curso. Idempotente.
func (s *SerialSession) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.closePort()
	})
	select {
	case <-s.doneCh:
	case <-time.After(stopJoinTimeout):
	}
}

// Send envia um comando de texto pela porta aberta, melhor esforço.
// Sem porta aberta o comando é descartado em silêncio.
func (s *SerialSession) Send(text string) {
	payload := NormalizeCommand(text)
	if payload == "" {
		return
	}

	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return
	}

	// Falha de escrita é engolida: o loop de leitura detecta a queda e reporta
	_, _ = port.Write([]byte(payload))
}

// run é o loop principal: sonda a existência da porta, conecta, lê em blocos
// e alimenta o sink; em erro de leitura fecha e recomeça a sondagem
func (s *SerialSession) run() {
	defer close(s.doneCh)
	defer s.finish()

	var (
		connected bool
		failures  int
		buf       = make([]byte, 1024)
	)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if !connected {
			if !s.portPresent() {
				if failures == 0 {
					s.status(fmt.Sprintf("Serial aguardando dispositivo em %s...", s.cfg.Port))
				}
				failures++
				if !s.wait(s.retry) {
					return
				}
				continue
			}

			port, err := openPort(s.cfg.Port, &serial.Mode{BaudRate: s.cfg.Baud})
			if err != nil {
				if failures == 0 {
					s.status(fmt.Sprintf("Falha ao abrir %s: %v; tentando novamente...", s.cfg.Port, err))
				}
				failures++
				if !s.wait(s.retry) {
					return
				}
				continue
			}

			// Timeout curto para o loop observar stopCh com regularidade
			_ = port.SetReadTimeout(serialReadTimeout)

			s.mu.Lock()
			s.port = port
			s.mu.Unlock()

			connected = true
			failures = 0
			s.status(fmt.Sprintf("Serial conectado: %s @ %d", s.cfg.Port, s.cfg.Baud))
		}

		s.mu.Lock()
		port := s.port
		s.mu.Unlock()
		if port == nil {
			// Stop fechou a porta entre iterações
			return
		}

		n, err := port.Read(buf)
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.status(fmt.Sprintf("Serial desconectado, reconectando: %v", err))
			s.closePort()
			connected = false
			continue
		}
		if n == 0 {
			// Timeout de leitura sem dados
			continue
		}
		s.sink.Feed(string(buf[:n]))
	}
}

// finish descarrega o residual do enquadrador e publica o status final
func (s *SerialSession) finish() {
	s.closePort()
	s.sink.Flush()
	s.status("Serial desconectado")
}

// portPresent verifica se a porta configurada aparece na enumeração do
// sistema. Erro de enumeração não bloqueia: a abertura decide.
func (s *SerialSession) portPresent() bool {
	ports, err := listPorts()
	if err != nil {
		return true
	}
	for _, name := range ports {
		if name == s.cfg.Port {
			return true
		}
	}
	return false
}

// closePort fecha a porta aberta, se houver
func (s *SerialSession) closePort() {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()
	if port != nil {
		_ = port.Close()
	}
}

// wait dorme pelo intervalo dado; retorna false se Stop foi pedido
func (s *SerialSession) wait(d time.Duration) bool {
	select {
	case <-s.stopCh:
		return false
	case <-time.After(d):
		return true
	}
}
