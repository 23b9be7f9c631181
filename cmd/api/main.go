package main

import (
	"log"
	"net/http"

	"fleet-inspection-api/internal"
	"fleet-inspection-api/internal/config"
	"fleet-inspection-api/internal/logging"

	"go.uber.org/zap"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer logger.Sync()

	// Create and start server
	srv, err := internal.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("starting fleet inspection API",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("env", cfg.AppEnv),
		zap.Bool("metrics", cfg.EnableMetrics),
		zap.Bool("cors", cfg.EnableCORS),
	)

	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
