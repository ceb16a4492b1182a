// Package main is the entry point for the Hollowpoint demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hollowpoint-games/hollowpoint/internal/config"
	"github.com/hollowpoint-games/hollowpoint/internal/game"
	"github.com/hollowpoint-games/hollowpoint/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Hollowpoint ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Create and run game
	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	g.Run()

	logger.Info("game closed normally")
}
