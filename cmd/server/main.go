package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/pairchat/internal/app"
	"github.com/nfrund/pairchat/internal/config"
	"github.com/nfrund/pairchat/internal/logging"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.New(cfg.LogFormat, cfg.LogLevel)

	a := app.New(context.Background(), cfg)
	defer a.Shutdown()

	if err := a.Run(context.Background()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		a.Shutdown()
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
