package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/application/tokenservice"
	"github.com/fundbridge/donate/internal/infrastructure/cache"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/logrepo"
	"github.com/fundbridge/donate/internal/repositories/tokenrepo"
	"github.com/fundbridge/donate/pkg/config"
	"github.com/fundbridge/donate/pkg/logger"
)

// app holds the shared infrastructure every command starts from.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *database.DBManager
	sink   *logger.Sink
	redis  *redis.Client
	cache  *cache.Cache
}

func bootstrap() (*app, error) {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log = logger.NewWithConfig(cfg.Logger)

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{cfg: cfg, db: db}
	if cfg.LogSink.Enabled {
		a.sink = logger.NewSink(logrepo.New(db), cfg.LogSink.Level, cfg.LogSink.BufferSize)
		log = logger.NewWithConfig(cfg.Logger, a.sink)
	}
	a.logger = log

	a.redis = cache.NewClient(cfg.Cache)
	a.cache = cache.New(a.redis, cfg.Cache, log)
	return a, nil
}

// tokens builds the access-token manager over the tokens table.
func (a *app) tokens() tokenservice.ITokenService {
	return tokenservice.New(
		tokenrepo.New(a.db, a.logger),
		clients.NewAuthClient(a.cfg.PaymentAPI, a.logger),
		a.cfg.PaymentAPI,
		a.logger,
	)
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close redis client")
	}
	if a.sink != nil {
		_ = a.sink.Close()
	}
	a.db.ShutDown()
}
