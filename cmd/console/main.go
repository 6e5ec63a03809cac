package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"schoolPlanner/internal/app"
	"schoolPlanner/internal/config"
	"schoolPlanner/internal/console"
	"schoolPlanner/internal/logger"
	"syscall"

	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		return err
	}
	// keep the menu readable; only problems reach the terminal
	logger.SetLevel(zapcore.WarnLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeStore, err := app.BuildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := console.New(svc, os.Stdin, os.Stdout).Run(ctx); err != nil {
		return err
	}

	if dirty, _ := svc.Dirty(); dirty {
		return svc.Flush(context.Background())
	}
	return nil
}
