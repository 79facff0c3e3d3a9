package main

import (
	"log"

	"github.com/chronocop/chronocop/internal/config"
	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/logger"
	"github.com/chronocop/chronocop/internal/server"
	"github.com/chronocop/chronocop/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger.Info("Configuration loaded", "data_dir", cfg.DataDir, "provider", cfg.Narrative.Provider)

	db, err := database.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	logger.Info("Database ready", "path", cfg.DataDir)

	// Initialize services
	entryService := services.NewEntryService(db)
	settingsService := services.NewSettingsService(db)
	narrativeService := services.NewNarrativeService(cfg.Narrative)
	summaryService := services.NewSummaryService(db, entryService, settingsService, narrativeService)

	srv := server.NewServer(entryService, settingsService, summaryService, narrativeService)
	logger.Info("Listening", "addr", cfg.ListenAddr)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("Server stopped", "error", err)
	}
}
