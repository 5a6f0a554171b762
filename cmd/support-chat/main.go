// cmd/support-chat/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"support-bot/internal/bootstrap"
	"support-bot/internal/chat"
	"support-bot/internal/common/config"
	"support-bot/internal/common/logger"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults to configs/config.yaml when present)")
	catalogPath := flag.String("catalog", "", "catalog file, overrides catalog.source")
	logLevel := flag.String("log-level", "warn", "log level")
	seed := flag.Int64("seed", 0, "response seed, 0 for time based")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.Catalog.Source = config.SourceFile
		cfg.Catalog.Path = *catalogPath
	}
	if *seed != 0 {
		cfg.Engine.Seed = *seed
	}

	zapLog := logger.New(*logLevel, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, release, err := bootstrap.OpenCatalog(ctx, cfg, log)
	release()
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}

	engine, err := bootstrap.NewEngine(cfg, cat, log)
	if err != nil {
		zapLog.Fatal("dialogue engine failed", zap.Error(err))
	}

	if err := chat.New(engine, os.Stdout).Run(ctx, os.Stdin); err != nil && err != context.Canceled {
		zapLog.Error("chat ended", zap.Error(err))
		os.Exit(1)
	}
}
