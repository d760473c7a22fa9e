package main

import (
	"flag"
	"log"

	"hiraya/internal/config"
	"hiraya/internal/database"
	"hiraya/internal/logger"

	"go.uber.org/zap"
)

func main() {
	sourceURL := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	appLogger.Info("Running schema migrations", zap.String("source", *sourceURL))
	if err := database.RunMigrations(*sourceURL, cfg.GetDSN()); err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
	appLogger.Info("Schema migrations completed")
}
