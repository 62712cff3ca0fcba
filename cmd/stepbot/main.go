package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/step-bot/app"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs := observability.New(config.ToObsConfig(cfg))
	logger := obs.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize app", attr.Error(err))
		os.Exit(1)
	}

	logger.Info("Step bot started")
	runErr := application.Run(ctx)

	logger.Info("Shutting down")
	if err := application.Close(); err != nil {
		logger.Error("Error during shutdown", attr.Error(err))
	}
	if runErr != nil {
		logger.Error("Step bot stopped with error", attr.Error(runErr))
		os.Exit(1)
	}
	logger.Info("Step bot shut down gracefully")
}
