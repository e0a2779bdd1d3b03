package transport

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"glove_go/internal/config"
)

type nopSink struct{}

func (nopSink) Feed(string) {}
func (nopSink) Flush()      {}

// statusRecorder acumula as mensagens de status emitidas pela sessão
type statusRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *statusRecorder) record(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *statusRecorder) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.msgs {
		if strings.Contains(msg, substr) {
			n++
		}
	}
	return n
}

// fakePort simula uma porta aberta: entrega dados pendentes, simula timeout
// de leitura quando vazia e devolve erro depois de marcada como caída
type fakePort struct {
	mu   sync.Mutex
	data []byte
	fail bool
}

func (p *fakePort) setFailed() {
	p.mu.Lock()
	p.fail = true
	p.mu.Unlock()
}

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if p.fail {
		p.mu.Unlock()
		return 0, errors.New("dispositivo removido")
	}
	if len(p.data) > 0 {
		n := copy(buf, p.data)
		p.data = p.data[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	// Sem dados: comporta-se como um timeout de leitura curto
	time.Sleep(time.Millisecond)
	return 0, nil
}

func (p *fakePort) Write(buf []byte) (int, error)                  { return len(buf), nil }
func (p *fakePort) Close() error                                   { return nil }
func (p *fakePort) SetMode(mode *serial.Mode) error                { return nil }
func (p *fakePort) SetReadTimeout(t time.Duration) error           { return nil }
func (p *fakePort) Drain() error                                   { return nil }
func (p *fakePort) ResetInputBuffer() error                        { return nil }
func (p *fakePort) ResetOutputBuffer() error                       { return nil }
func (p *fakePort) SetDTR(dtr bool) error                          { return nil }
func (p *fakePort) SetRTS(rts bool) error                          { return nil }
func (p *fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (p *fakePort) Break(d time.Duration) error                    { return nil }

// swapSerialHooks injeta enumeração e abertura falsas, restaurando no fim
func swapSerialHooks(t *testing.T, list func() ([]string, error), open func(string, *serial.Mode) (serial.Port, error)) {
	t.Helper()
	prevList, prevOpen := listPorts, openPort
	if list != nil {
		listPorts = list
	}
	if open != nil {
		openPort = open
	}
	t.Cleanup(func() {
		listPorts = prevList
		openPort = prevOpen
	})
}

func newTestSession(status StatusFunc) *SerialSession {
	s := NewSerialSession(config.SerialConfig{Port: "/dev/ttyTEST", Baud: 115200}, nopSink{}, status)
	s.retry = time.Millisecond
	return s
}

func TestSerialWaitingStatusOncePerOutage(t *testing.T) {
	var polls atomic.Int64
	swapSerialHooks(t, func() ([]string, error) {
		polls.Add(1)
		return nil, nil
	}, nil)

	rec := &statusRecorder{}
	s := newTestSession(rec.record)
	require.NoError(t, s.Start())

	// Deixar várias iterações de sondagem acontecerem na mesma ausência
	require.Eventually(t, func() bool { return polls.Load() >= 5 },
		time.Second, time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, rec.count("aguardando dispositivo"))
}

func TestSerialOpenFailureStatusOncePerStreak(t *testing.T) {
	var attempts atomic.Int64
	swapSerialHooks(t,
		func() ([]string, error) { return []string{"/dev/ttyTEST"}, nil },
		func(name string, mode *serial.Mode) (serial.Port, error) {
			attempts.Add(1)
			return nil, errors.New("porta ocupada")
		})

	rec := &statusRecorder{}
	s := newTestSession(rec.record)
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool { return attempts.Load() >= 5 },
		time.Second, time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, rec.count("Falha ao abrir"))
}

func TestSerialStatusStreakResetsAfterReconnect(t *testing.T) {
	var (
		present atomic.Bool
		port    = &fakePort{}
	)
	swapSerialHooks(t,
		func() ([]string, error) {
			if present.Load() {
				return []string{"/dev/ttyTEST"}, nil
			}
			return nil, nil
		},
		func(name string, mode *serial.Mode) (serial.Port, error) {
			return port, nil
		})

	rec := &statusRecorder{}
	s := newTestSession(rec.record)
	require.NoError(t, s.Start())

	// Primeira ausência: uma única mensagem de espera
	require.Eventually(t, func() bool { return rec.count("aguardando dispositivo") == 1 },
		time.Second, time.Millisecond)

	// A porta aparece e a sessão conecta, zerando a sequência de falhas
	present.Store(true)
	require.Eventually(t, func() bool { return rec.count("Serial conectado:") == 1 },
		time.Second, time.Millisecond)

	// Queda da conexão seguida de nova ausência: nova sequência, nova mensagem
	present.Store(false)
	port.setFailed()
	require.Eventually(t, func() bool { return rec.count("aguardando dispositivo") == 2 },
		time.Second, time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, rec.count("Serial conectado:"))
	assert.Equal(t, 1, rec.count("reconectando"))
	assert.Equal(t, 2, rec.count("aguardando dispositivo"))
}
