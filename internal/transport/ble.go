package transport

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"glove_go/internal/config"
)

// UUIDs do serviço Nordic UART (NUS): RX recebe escritas do host,
// TX notifica o host com os dados do dispositivo
var (
	nusServiceUUID = mustUUID("6e400001-b5a3-f393-e0a9-e50e24dcca9e")
	nusRxCharUUID  = mustUUID("6e400002-b5a3-f393-e0a9-e50e24dcca9e")
	nusTxCharUUID  = mustUUID("6e400003-b5a3-f393-e0a9-e50e24dcca9e")
)

func mustUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return uuid
}

// BLESession mantém uma conexão BLE Nordic UART com o dispositivo. Todo o
// ciclo de vida (busca, conexão, notificações, escrita e reconexão) corre
// numa única goroutine; o callback de notificação apenas entrega os pedaços
// num canal consumido por essa goroutine, preservando a posse exclusiva do
// sink. Comandos chegam por uma caixa de correio própria.
type BLESession struct {
	cfg     config.BLEConfig
	sink    Sink
	status  StatusFunc
	adapter *bluetooth.Adapter

	commands      chan []byte
	notifications chan string
	disconnects   chan struct{}

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewBLESession cria uma sessão BLE ainda não iniciada sobre o adaptador padrão
func NewBLESession(cfg config.BLEConfig, sink Sink, status StatusFunc) *BLESession {
	return &BLESession{
		cfg:           cfg,
		sink:          sink,
		status:        status,
		adapter:       bluetooth.DefaultAdapter,
		commands:      make(chan []byte, 32),
		notifications: make(chan string, 256),
		disconnects:   make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Name retorna o identificador do transporte
func (b *BLESession) Name() string {
	return "ble"
}

// Start habilita o adaptador e inicia o loop da sessão em segundo plano
func (b *BLESession) Start() error {
	if err := b.adapter.Enable(); err != nil {
		b.status(fmt.Sprintf("BLE indisponível: %v", err))
		return fmt.Errorf("habilitar adaptador BLE: %w", err)
	}

	b.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if !connected {
			select {
			case b.disconnects <- struct{}{}:
			default:
			}
		}
	})

	go b.run()
	return nil
}

// Stop encerra a sessão e aguarda o término do loop. Idempotente.
func (b *BLESession) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		// Interrompe um scan em curso
		_ = b.adapter.StopScan()
	})
	select {
	case <-b.doneCh:
	case <-time.After(stopJoinTimeout):
	}
}

// Send normaliza e enfileira um comando para a goroutine da sessão.
// Com a caixa de correio cheia o comando é descartado.
func (b *BLESession) Send(text string) {
	payload := NormalizeCommand(text)
	if payload == "" {
		return
	}
	select {
	case b.commands <- []byte(payload):
	default:
	}
}

// run é o loop principal: resolve o alvo, conecta, descobre as
// características NUS e entra no loop de streaming; qualquer queda
// recomeça o ciclo após o backoff
func (b *BLESession) run() {
	defer close(b.doneCh)
	defer b.finish()

	failures := 0
	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		addr, ok := b.resolveTarget()
		if !ok {
			select {
			case <-b.stopCh:
				return
			default:
			}
			b.reportFailure(&failures, "BLE: dispositivo não encontrado, repetindo busca...")
			if !b.wait(bleRetryBackoff) {
				return
			}
			continue
		}

		device, err := b.adapter.Connect(addr, bluetooth.ConnectionParams{
			ConnectionTimeout: bluetooth.NewDuration(b.cfg.ConnectTimeout),
		})
		if err != nil {
			b.reportFailure(&failures, fmt.Sprintf("BLE: falha ao conectar: %v", err))
			if !b.wait(bleRetryBackoff) {
				return
			}
			continue
		}

		rx, tx, err := discoverNUS(device)
		if err != nil {
			_ = device.Disconnect()
			b.reportFailure(&failures, fmt.Sprintf("BLE: %v", err))
			if !b.wait(bleRetryBackoff) {
				return
			}
			continue
		}

		// Limpar uma desconexão antiga antes de armar as notificações
		select {
		case <-b.disconnects:
		default:
		}

		err = tx.EnableNotifications(func(buf []byte) {
			data := string(buf)
			select {
			case b.notifications <- data:
			default:
				// Canal cheio: o consumidor está parado, descartar é melhor
				// que bloquear a pilha BLE
			}
		})
		if err != nil {
			_ = device.Disconnect()
			b.reportFailure(&failures, fmt.Sprintf("BLE: falha ao habilitar notificações: %v", err))
			if !b.wait(bleRetryBackoff) {
				return
			}
			continue
		}

		failures = 0
		b.status("BLE conectado. Recebendo notificações...")

		if !b.stream(rx, writeChunkFor(rx)) {
			_ = device.Disconnect()
			return
		}

		// Desconexão do dispositivo: reconectar a partir da busca
		_ = device.Disconnect()
		b.status("BLE desconectado, reconectando...")
		if !b.wait(bleRetryBackoff) {
			return
		}
	}
}

// stream consome notificações, desconexões e comandos até a queda da
// conexão (retorna true) ou um pedido de Stop (retorna false)
func (b *BLESession) stream(rx bluetooth.DeviceCharacteristic, chunkSize int) bool {
	for {
		select {
		case <-b.stopCh:
			b.drainNotifications()
			return false
		case data := <-b.notifications:
			b.sink.Feed(data)
		case <-b.disconnects:
			b.drainNotifications()
			return true
		case payload := <-b.commands:
			b.writeChunked(rx, payload, chunkSize)
		case <-time.After(commandPollTimeout):
			// Volta ao select; mantém o loop responsivo a stopCh
		}
	}
}

// writeChunked envia o comando em fragmentos do tamanho negociado,
// drenando notificações entre fragmentos para não atrasar a leitura
func (b *BLESession) writeChunked(rx bluetooth.DeviceCharacteristic, payload []byte, chunkSize int) {
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		if _, err := rx.WriteWithoutResponse(payload[off:end]); err != nil {
			// Escrita é melhor esforço; a queda chega pelo connect handler
			return
		}
		if end < len(payload) {
			b.drainNotifications()
		}
	}
}

// drainNotifications entrega ao sink tudo que estiver pendente, sem bloquear
func (b *BLESession) drainNotifications() {
	for {
		select {
		case data := <-b.notifications:
			b.sink.Feed(data)
		default:
			return
		}
	}
}

// resolveTarget determina o endereço do dispositivo: usa o endereço
// explícito da configuração quando presente, senão procura por nome
func (b *BLESession) resolveTarget() (bluetooth.Address, bool) {
	if b.cfg.Address != "" {
		mac, err := bluetooth.ParseMAC(b.cfg.Address)
		if err != nil {
			b.status(fmt.Sprintf("BLE: endereço inválido %q: %v", b.cfg.Address, err))
			return bluetooth.Address{}, false
		}
		return bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, true
	}

	result, ok := scanForDevice(b.adapter, b.cfg, b.status, b.stopCh)
	if !ok {
		return bluetooth.Address{}, false
	}
	return result.Address, true
}

// finish descarrega notificações e residual pendentes e publica o status final
func (b *BLESession) finish() {
	b.drainNotifications()
	b.sink.Flush()
	b.status("BLE desconectado")
}

// reportFailure publica a mensagem na primeira falha da sequência e depois
// apenas a cada bleStatusEvery tentativas
func (b *BLESession) reportFailure(failures *int, message string) {
	if *failures%bleStatusEvery == 0 {
		b.status(message)
	}
	*failures++
}

// wait dorme pelo intervalo dado; retorna false se Stop foi pedido
func (b *BLESession) wait(d time.Duration) bool {
	select {
	case <-b.stopCh:
		return false
	case <-time.After(d):
		return true
	}
}

// writeChunkFor consulta o MTU negociado da característica; sem resposta
// válida vale o fragmento mínimo
func writeChunkFor(rx bluetooth.DeviceCharacteristic) int {
	mtu, err := rx.GetMTU()
	if err != nil {
		return DefaultWriteChunk
	}
	return WriteChunkSize(int(mtu))
}

// discoverNUS localiza as características RX (escrita) e TX (notificação)
// do serviço Nordic UART no dispositivo conectado
func discoverNUS(device bluetooth.Device) (rx, tx bluetooth.DeviceCharacteristic, err error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{nusServiceUUID})
	if err != nil {
		return rx, tx, fmt.Errorf("descobrir serviço NUS: %w", err)
	}
	if len(services) == 0 {
		return rx, tx, fmt.Errorf("serviço NUS ausente no dispositivo")
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{nusRxCharUUID, nusTxCharUUID})
	if err != nil {
		return rx, tx, fmt.Errorf("descobrir características NUS: %w", err)
	}
	if len(chars) < 2 {
		return rx, tx, fmt.Errorf("características NUS incompletas (%d de 2)", len(chars))
	}
	return chars[0], chars[1], nil
}

// scanForDevice faz um scan limitado por tempo procurando o primeiro anúncio
// cujo nome contenha a dica configurada (case-insensitive)
func scanForDevice(adapter *bluetooth.Adapter, cfg config.BLEConfig, status StatusFunc, stopCh <-chan struct{}) (bluetooth.ScanResult, bool) {
	hint := strings.ToLower(strings.TrimSpace(cfg.NameHint))
	if hint == "" {
		status("BLE: nenhuma dica de nome configurada para o scan")
		return bluetooth.ScanResult{}, false
	}

	status(fmt.Sprintf("BLE: procurando dispositivos contendo %q (%.1fs)...", cfg.NameHint, cfg.ScanTimeout.Seconds()))

	var (
		mu    sync.Mutex
		found bluetooth.ScanResult
		ok    bool
	)

	timer := time.AfterFunc(cfg.ScanTimeout, func() {
		_ = adapter.StopScan()
	})
	defer timer.Stop()

	if stopCh != nil {
		scanDone := make(chan struct{})
		defer close(scanDone)
		go func() {
			select {
			case <-stopCh:
				_ = adapter.StopScan()
			case <-scanDone:
			}
		}()
	}

	err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
		name := strings.ToLower(result.LocalName())
		if name == "" || !strings.Contains(name, hint) {
			return
		}
		mu.Lock()
		if !ok {
			found = result
			ok = true
		}
		mu.Unlock()
		_ = a.StopScan()
	})
	if err != nil {
		status(fmt.Sprintf("BLE: falha no scan: %v", err))
		return bluetooth.ScanResult{}, false
	}

	mu.Lock()
	defer mu.Unlock()
	if ok {
		status(fmt.Sprintf("BLE: encontrado %s (%s). Conectando...", found.LocalName(), found.Address.String()))
	}
	return found, ok
}

// ProbeTarget faz uma única resolução síncrona do alvo BLE, usada na escolha
// de transporte no arranque. Retorna o endereço encontrado em formato texto.
func ProbeTarget(cfg config.BLEConfig, status StatusFunc) (string, bool) {
	if cfg.Address != "" {
		return cfg.Address, true
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		status(fmt.Sprintf("BLE indisponível: %v", err))
		return "", false
	}

	result, ok := scanForDevice(adapter, cfg, status, nil)
	if !ok {
		return "", false
	}
	return result.Address.String(), true
}
