package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"blogmodapk-backend/internal/app"
	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables", nil)
	}

	cfg := config.New()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting Blog ModAPK API", nil)
	validator.Init()

	application, err := app.New(cfg)
	if err != nil {
		logger.Error(err, "Failed to initialize application", nil)
		os.Exit(1)
	}

	if err := app.Serve(application, 30*time.Second); err != nil {
		os.Exit(1)
	}
}
