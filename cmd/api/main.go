package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"schoolPlanner/internal/app"
	"schoolPlanner/internal/config"
	"schoolPlanner/internal/logger"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	if err := config.LoadEnvFiles(".env"); err != nil {
		logger.Logger = zap.NewExample()
		logger.Error("App: failed to load .env", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Logger = zap.NewExample()
		logger.Error("App: failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		logger.Error("App: init failed", err)
		logger.Sync()
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: stopped with error", err)
		os.Exit(1)
	}
	logger.Info("App: stopped")
}
