package config

import "time"

// getDefaultConfig retorna uma configuração padrão
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Transport: TransportConfig{
			Mode: "auto",
			Serial: SerialConfig{
				Port: "/dev/ttyUSB0",
				Baud: 115200,
			},
			BLE: BLEConfig{
				NameHint:       "G-Love",
				Address:        "",
				ScanTimeout:    5 * time.Second,
				ConnectTimeout: 30 * time.Second,
			},
			FragmentThreshold: 256,
			QueueCap:          4096,
			DisplayCap:        5000,
		},
		Logs: LogConfig{
			ShowAll: false,
			Tags:    nil,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			Prefix:   "glove",
			Enabled:  false,
		},
	}
}
