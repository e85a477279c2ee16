package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/nextloc/nextloc-go/internal/api"
	"github.com/nextloc/nextloc-go/internal/config"
	"github.com/nextloc/nextloc-go/internal/database"
	"github.com/nextloc/nextloc-go/internal/handler"
	"github.com/nextloc/nextloc-go/internal/predictor"
	"github.com/nextloc/nextloc-go/internal/repository"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "nextloc",
	})

	cfg := config.Load()

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		logger.Fatal("Failed to create storage root", "err", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		logger.Fatal("Failed to initialize database", "err", err)
	}
	defer database.Close()

	pred := predictor.New(predictor.Config{
		DataDir:         cfg.DataDir,
		StorageRoot:     cfg.StorageRoot,
		Khop:            cfg.Khop,
		MaxNeighbors:    cfg.MaxNeighbors,
		ExploreNum:      cfg.ExploreNum,
		MemoryLens:      cfg.MemoryLens,
		DefaultModel:    cfg.DefaultModel,
		DefaultPlatform: cfg.DefaultPlatform,
	}, logger, nil)

	repo := repository.NewPredictionRepository(database.GetDB())

	trajectories := handler.NewTrajectoryHandler(pred, cfg.DataDir)
	predictions, err := handler.NewPredictHandler(pred, repo, cfg.CacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to create predict handler", "err", err)
	}

	router := api.SetupRouter(cfg, logger, trajectories, predictions)

	logger.Info("Server starting", "port", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatal("Failed to start server", "err", err)
	}
}
