package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"glove_go/internal/config"
	"glove_go/internal/server"
	"glove_go/pkg/logger"
)

func main() {
	// Configurar diretório de logs
	logDir := filepath.Join(".", "logs")
	os.MkdirAll(logDir, 0755)

	// Inicializar logger
	logger.Init()
	logger.SetLevel(logger.INFO)
	logger.EnableFileLogging(logDir, "glove")
	defer logger.Sync()

	// Exibir banner de inicialização
	displayBanner()

	logger.Info("Iniciando G-Love Monitor")

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Erro ao carregar configurações", err)
	}

	logger.Infof("Configuração carregada: transporte %s, serial %s @ %d, BLE '%s'",
		cfg.Transport.Mode, cfg.Transport.Serial.Port, cfg.Transport.Serial.Baud,
		cfg.Transport.BLE.NameHint)
	if cfg.Redis.Enabled {
		logger.Infof("Redis habilitado em %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}

	// Criar e iniciar o servidor
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Erro ao criar servidor", err)
	}

	// Iniciar o servidor em uma goroutine separada
	go func() {
		logger.Infof("Servidor iniciado na porta %d", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Fatal("Erro ao iniciar o servidor", err)
		}
	}()

	// Configurar captura de sinais para shutdown gracioso
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Desligando servidor...")

	// Criar contexto com timeout para o shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Desligar o servidor
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Erro durante o shutdown do servidor", err)
	}

	logger.Info("Servidor encerrado com sucesso")
}

// displayBanner exibe um banner de inicialização
func displayBanner() {
	banner := `
  ______        _       ___  _    _ _______     __  __  ___  __   _ _____ _______  ___   ____
 |  ____|      | |     / _ \| |  | |  ___|     |  \/  |/ _ \|  \ | |_   _|_   _| |/ _ \ |  _ \
 | |  __ ______| |    | | | | |  | | |__       | |\/| | | | |   \| | | |   | | | | | | || |_) |
 | | |_ |______| |    | | | | |  | |  __|      | |  | | | | | |\   | | |   | | | | | | ||  _ <
 | |__| |      | |____| |_| | \__/ | |___      | |  | | |_| | | \  |_| |_  | | | | |_| || | \ \
  \_____|      |______|\___/ \____/|_____|     |_|  |_|\___/|_|  \_|_____| |_| |_|\___/ |_|  \_\
                                                                          G-LOVE MONITOR  v1.0
`
	fmt.Println(banner)
	fmt.Printf("Iniciando em %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
}
