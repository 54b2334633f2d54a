package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mesi0621/storefront-gateway/internal/api"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
	"github.com/mesi0621/storefront-gateway/internal/infrastructure/config"
	mongodb "github.com/mesi0621/storefront-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/mesi0621/storefront-gateway/internal/infrastructure/db/redis"
	"github.com/mesi0621/storefront-gateway/internal/infrastructure/queue"
	"github.com/mesi0621/storefront-gateway/internal/infrastructure/upstream"
	"github.com/mesi0621/storefront-gateway/internal/session"
	"github.com/mesi0621/storefront-gateway/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Redis backs every session's durable state; without it nothing works.
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	store := redisdb.NewLocalStore(rdb, cfg.SessionTTL)

	// The merge journal is diagnostics only; run without it when Mongo is
	// not configured or unreachable.
	var journal ports.MergeJournal
	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, merge journaling disabled")
		mongoClient = nil
	} else {
		journal = mongodb.NewMergeJournal(mongoDB)
	}

	storefront := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	authClient := upstream.NewAuthClient(storefront)
	cartClient := upstream.NewCartClient(storefront)
	catalog := upstream.NewCatalogClient(storefront, cfg.Upstream.CatalogTTL)

	interactions := upstream.NewInteractionsClient(
		upstream.NewClient(cfg.Upstream.InteractionsURL, cfg.Upstream.Timeout))
	dispatcher := queue.NewDispatcher(cfg.Upstream.Workers, interactions, log)
	dispatcher.Start(ctx)

	sessions := session.NewManager(session.Dependencies{
		Store:        store,
		Auth:         authClient,
		Cart:         cartClient,
		Catalog:      catalog,
		Interactions: dispatcher,
		Journal:      journal,
		JWTSecret:    cfg.JWTSecret,
		TTL:          cfg.SessionTTL,
		Log:          log,
	})
	go sessions.Run(ctx)

	e := api.NewRouter(api.RouterDeps{
		Sessions:   sessions,
		Store:      store,
		SessionTTL: cfg.SessionTTL,
		Redis:      rdb,
		Mongo:      mongoClient,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting storefront gateway")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	_ = rdb.Close()
}
