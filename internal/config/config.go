package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server    ServerConfig    `json:"server"`
	Transport TransportConfig `json:"transport"`
	Logs      LogConfig       `json:"logs"`
	Redis     RedisConfig     `json:"redis"`
}

// ServerConfig contém configurações do servidor HTTP/WebSocket
type ServerConfig struct {
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
}

// TransportConfig contém a preferência de transporte e os parâmetros das sessões
type TransportConfig struct {
	// Mode define a preferência: "auto" (BLE com fallback para serial),
	// "ble" (somente BLE) ou "serial" (somente serial)
	Mode   string       `json:"mode"`
	Serial SerialConfig `json:"serial"`
	BLE    BLEConfig    `json:"ble"`

	// FragmentThreshold limita o buffer residual do enquadrador de linhas;
	// acima disso o residual é descarregado como fragmento
	FragmentThreshold int `json:"fragmentThreshold"`

	// QueueCap limita as filas de saída (CLI/log/status); 0 = sem limite
	QueueCap int `json:"queueCap"`

	// DisplayCap é o limite de linhas sugerido aos consumidores de exibição
	DisplayCap int `json:"displayCap"`
}

// SerialConfig contém configurações da sessão serial
type SerialConfig struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

// BLEConfig contém configurações da sessão BLE (Nordic UART)
type BLEConfig struct {
	NameHint       string        `json:"nameHint"`       // Substring do nome anunciado
	Address        string        `json:"address"`        // Endereço explícito (ignora o scan)
	ScanTimeout    time.Duration `json:"scanTimeout"`    // Duração máxima do scan
	ConnectTimeout time.Duration `json:"connectTimeout"` // Timeout de conexão
}

// LogConfig controla o filtro de logs estruturados encaminhados ao console CLI
type LogConfig struct {
	ShowAll bool     `json:"showAll"` // Exibe todos os logs estruturados no CLI
	Tags    []string `json:"tags"`    // Allow-list de tags (case-insensitive)
}

// RedisConfig contém configurações do Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
	Enabled  bool   `json:"enabled"`
}

// Load carrega a configuração do arquivo ou usa valores padrão
func Load() (*Config, error) {
	config := getDefaultConfig()

	// Verificar se existe um arquivo de configuração
	if _, err := os.Stat("config.json"); err == nil {
		file, err := os.Open("config.json")
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return nil, err
		}
	}

	// Sobrescrever com variáveis de ambiente, se existirem
	applyEnvironmentOverrides(&config)

	return &config, nil
}

// applyEnvironmentOverrides sobrescreve configurações com variáveis de ambiente
func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("GLOVE_TRANSPORT_MODE"); v != "" {
		config.Transport.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("GLOVE_SERIAL_PORT"); v != "" {
		config.Transport.Serial.Port = v
	}
	if v := os.Getenv("GLOVE_SERIAL_BAUD"); v != "" {
		if baud, err := strconv.Atoi(v); err == nil {
			config.Transport.Serial.Baud = baud
		}
	}
	if v := os.Getenv("GLOVE_BLE_NAME"); v != "" {
		config.Transport.BLE.NameHint = v
	}
	if v := os.Getenv("GLOVE_BLE_ADDRESS"); v != "" {
		config.Transport.BLE.Address = v
	}
	if v := os.Getenv("GLOVE_SHOW_LOGS"); v != "" {
		config.Logs.ShowAll = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("GLOVE_LOG_TAGS"); v != "" {
		config.Logs.Tags = splitTags(v)
	}
	if v := os.Getenv("GLOVE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("GLOVE_REDIS_HOST"); v != "" {
		config.Redis.Host = v
	}
	if v := os.Getenv("GLOVE_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Redis.Port = port
		}
	}
}

// splitTags separa uma lista de tags delimitada por vírgulas
func splitTags(raw string) []string {
	var tags []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tags = append(tags, tok)
		}
	}
	return tags
}

// SerialOnly indica se a preferência exige somente transporte serial
func (t TransportConfig) SerialOnly() bool {
	return strings.EqualFold(t.Mode, "serial")
}

// BLEOnly indica se a preferência exige somente transporte BLE
func (t TransportConfig) BLEOnly() bool {
	return strings.EqualFold(t.Mode, "ble")
}
