package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"glove_go/internal/glove"
	"glove_go/internal/redis"
	"glove_go/pkg/logger"
)

// Handler contém os handlers HTTP para a API
type Handler struct {
	gloveService *glove.Service
	redisService *redis.Service
}

// NewHandler cria um novo handler de API
func NewHandler(gloveService *glove.Service, redisService *redis.Service) *Handler {
	return &Handler{
		gloveService: gloveService,
		redisService: redisService,
	}
}

// GetTelemetry retorna o snapshot de telemetria atual da luva
func (h *Handler) GetTelemetry(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	snapshot := h.gloveService.Snapshot()

	// Sem nenhuma telemetria recebida ainda, tentar o último snapshot
	// publicado no Redis (sobrevive a reinícios do pipeline)
	if snapshot.LastUpdate.IsZero() && h.redisService != nil && h.redisService.IsConnected() {
		if stored, err := h.redisService.GetSnapshot(); err == nil && stored != nil {
			snapshot = *stored
		}
	}

	response := map[string]interface{}{
		"snapshot":  snapshot,
		"timestamp": snapshot.LastUpdate.UnixNano() / int64(time.Millisecond),
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetStatus retorna o estado atual do transporte com o dispositivo
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	status := h.gloveService.TransportStatus()

	response := map[string]interface{}{
		"transport": status.Transport,
		"running":   h.gloveService.IsRunning(),
		"timestamp": status.Timestamp.UnixNano() / int64(time.Millisecond),
	}

	// Adicionar a última mensagem de ciclo de vida, se houver
	if status.LastMessage != "" {
		response["lastMessage"] = status.LastMessage
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// GetDevice retorna as informações de saúde do dispositivo (bateria, RSSI,
// última leitura de flexão) extraídas do snapshot atual
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	snapshot := h.gloveService.Snapshot()

	response := map[string]interface{}{
		"timestamp": snapshot.LastUpdate.UnixNano() / int64(time.Millisecond),
	}

	if snapshot.BatteryPercent != nil {
		response["batteryPercent"] = *snapshot.BatteryPercent
	}
	if snapshot.BatteryVolts != nil {
		response["batteryVolts"] = *snapshot.BatteryVolts
	}
	if snapshot.RSSI != nil {
		response["rssi"] = *snapshot.RSSI
	}
	if snapshot.Flex != nil {
		response["flex"] = snapshot.Flex
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// SendCommand encaminha um comando de texto ao dispositivo
func (h *Handler) SendCommand(w http.ResponseWriter, r *http.Request) {
	// Verificar método HTTP
	if r.Method != http.MethodPost {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if strings.TrimSpace(body.Text) == "" {
		h.respondWithError(w, http.StatusBadRequest, "Texto do comando vazio")
		return
	}

	h.gloveService.SendCommand(body.Text)

	h.respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted":  true,
		"timestamp": time.Now().UnixNano() / int64(time.Millisecond),
	})
}

// respondWithJSON envia uma resposta JSON com o código de status dado
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Erro ao codificar resposta JSON: %v", err)
	}
}

// respondWithError envia uma resposta de erro JSON
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}
