package server

import (
	"time"

	"glove_go/pkg/logger"
)

const (
	// queuePumpInterval é a cadência de drenagem das filas CLI/log/status
	queuePumpInterval = 25 * time.Millisecond

	// telemetryPumpInterval é a cadência de publicação de snapshots (~30Hz)
	telemetryPumpInterval = 33 * time.Millisecond

	// redisSnapshotInterval limita a taxa de escrita de snapshots no Redis
	redisSnapshotInterval = 200 * time.Millisecond
)

// runQueuePump drena as filas de saída do pipeline e as publica no hub
// WebSocket; mensagens de status também alimentam o Redis
func (s *Server) runQueuePump() {
	ticker := time.NewTicker(queuePumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.pumpCtx.Done():
			return
		case <-ticker.C:
			if lines := s.gloveService.DrainCLI(); len(lines) > 0 {
				s.wsHub.BroadcastConsole(lines)
			}

			if lines := s.gloveService.DrainLog(); len(lines) > 0 {
				s.wsHub.BroadcastMonitor(lines)
			}

			for _, message := range s.gloveService.DrainStatus() {
				status := s.gloveService.TransportStatus()
				status.LastMessage = message
				s.wsHub.BroadcastStatus(status)

				if err := s.redisService.WriteStatus(status); err != nil {
					logger.Debugf("Falha ao publicar status no Redis: %v", err)
				}
			}
		}
	}
}

// runTelemetryPump publica o snapshot de telemetria quando houver mudança
// desde a última publicação; o Redis recebe uma amostra com taxa limitada
func (s *Server) runTelemetryPump() {
	ticker := time.NewTicker(telemetryPumpInterval)
	defer ticker.Stop()

	var (
		lastBroadcast  time.Time
		lastRedisWrite time.Time
	)

	for {
		select {
		case <-s.pumpCtx.Done():
			return
		case <-ticker.C:
			snapshot := s.gloveService.Snapshot()
			if !snapshot.LastUpdate.After(lastBroadcast) {
				continue
			}
			lastBroadcast = snapshot.LastUpdate

			s.wsHub.BroadcastTelemetry(snapshot)

			if time.Since(lastRedisWrite) >= redisSnapshotInterval {
				lastRedisWrite = time.Now()
				if err := s.redisService.WriteSnapshot(snapshot); err != nil {
					logger.Debugf("Falha ao publicar snapshot no Redis: %v", err)
				}
			}
		}
	}
}
