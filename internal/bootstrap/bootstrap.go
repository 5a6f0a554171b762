// Package bootstrap builds the dialogue engine from configuration. It is
// shared by the worker manager and the chat CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"support-bot/internal/catalog"
	"support-bot/internal/common/config"
	"support-bot/internal/common/database"
	"support-bot/internal/common/logger"
	"support-bot/internal/dialogue"
	"support-bot/internal/models"
)

type closer func()

// OpenCatalog loads the catalog from the configured source. The returned
// func releases any connection opened for the load and is never nil.
func OpenCatalog(ctx context.Context, cfg *config.Config, log logger.Logger) (*models.Catalog, func(), error) {
	src, release, err := newSource(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}

	start := time.Now()
	cat, err := src.Load(ctx)
	if err != nil {
		release()
		return nil, func() {}, err
	}

	log.Info("Catalog loaded", map[string]interface{}{
		"source":   src.Name(),
		"intents":  len(cat.Intents),
		"duration": time.Since(start).String(),
	})
	return cat, release, nil
}

func newSource(ctx context.Context, cfg *config.Config) (catalog.Source, closer, error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case "", config.SourceBuiltin:
		return catalog.BuiltinSource(), noop, nil

	case config.SourceFile:
		return catalog.FileSource{Path: cfg.Catalog.Path}, noop, nil

	case config.SourceRedis:
		format, err := catalog.ParseFormat(cfg.Catalog.Format)
		if err != nil {
			return nil, nil, err
		}
		rc, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog redis: %w", err)
		}
		return catalog.NewRedisSource(rc.Client, cfg.Catalog.RedisKey, format), func() { _ = rc.Close() }, nil

	case config.SourcePostgres:
		pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog postgres: %w", err)
		}
		src, err := catalog.NewPostgresSource(pg.DB, cfg.Catalog.Table)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return src, func() { _ = pg.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
}

// EngineOptions translates the engine section into dialogue options.
func EngineOptions(cfg config.EngineConfig, log logger.Logger) []dialogue.Option {
	opts := []dialogue.Option{
		dialogue.WithLogger(log),
		dialogue.WithThreshold(cfg.Threshold),
		dialogue.WithHistorySize(cfg.HistorySize),
	}
	if cfg.EntitiesEnabled {
		opts = append(opts, dialogue.WithEntities())
	}
	if cfg.Seed != 0 {
		opts = append(opts, dialogue.WithChooser(dialogue.NewRandomChooser(cfg.Seed)))
	}
	return opts
}

// NewEngine builds the prototype engine. extra options are applied last.
func NewEngine(cfg *config.Config, cat *models.Catalog, log logger.Logger, extra ...dialogue.Option) (*dialogue.Engine, error) {
	opts := append(EngineOptions(cfg.Engine, log), extra...)
	return dialogue.New(cat, opts...)
}

// NewSessions wraps the prototype in a session registry sized by cfg.
func NewSessions(cfg config.EngineConfig, proto *dialogue.Engine, log logger.Logger) *dialogue.Sessions {
	return dialogue.NewSessions(proto,
		dialogue.WithMaxSessions(cfg.MaxSessions),
		dialogue.WithIdleTTL(cfg.IdleTTL()),
		dialogue.WithSessionLogger(log),
	)
}
