package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/VaryushinFleksey/Vitka-bot/internal/app"
	"github.com/VaryushinFleksey/Vitka-bot/internal/config"
	"github.com/VaryushinFleksey/Vitka-bot/internal/logger"
)

// exitEarly reports a startup failure before a logger exists.
func exitEarly(what string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(2)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Refuse to start without a token; nothing is scheduled yet.
		exitEarly("config error", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		exitEarly("logger init error", err)
	}
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
	log.Info("stopped")
}
