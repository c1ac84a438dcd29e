package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-offers-backend/internal/common/cache"
	"giveaway-offers-backend/internal/common/config"
	"giveaway-offers-backend/internal/common/logger"
	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/registry"
	"giveaway-offers-backend/internal/features/participation/repository"
	boltrepo "giveaway-offers-backend/internal/features/participation/repository/bolt"
	redisrepo "giveaway-offers-backend/internal/features/participation/repository/redis"
	sqliterepo "giveaway-offers-backend/internal/features/participation/repository/sqlite"
	"giveaway-offers-backend/internal/features/participation/service"
	"giveaway-offers-backend/internal/features/participation/token"
	platformredis "giveaway-offers-backend/internal/platform/redis"
	"giveaway-offers-backend/internal/workers"
)

// @title           Giveaway Offers API
// @version         1.0
// @description     Participation submission service for offer-gated giveaways.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init data (telegram participation mode only)

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key

// @tag.name participations
// @tag.description Participation submission

// @tag.name offers
// @tag.description Offer network callbacks

// @tag.name admin
// @tag.description Participation review, delivery and draws

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.Init(cfg.ServiceName, cfg.Debug)
	appLog.Info().
		Bool("debug", cfg.Debug).
		Str("mode", cfg.Participation.Mode).
		Str("store", cfg.Store.Backend).
		Str("registry", cfg.Participation.Registry).
		Msg("Starting Giveaway Offers Backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]pinger{}

	var rdb platformredis.RedisClient
	if cfg.UsesRedis() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		rdb, err = platformredis.CreateRedisClient(connectCtx, cfg)
		cancel()
		if err != nil {
			appLog.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		checks["redis"] = pingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		appLog.Info().Interface("shards", platformredis.GetShardStats(rdb)).Msg("Redis connection established")
	}

	repo, err := openRepository(cfg, rdb)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to open participation store")
	}
	defer repo.Close()
	checks["store"] = repo

	reg := newRegistry(cfg, rdb, logger.Component("registry"))

	submissions := service.NewSubmissionService(
		reg,
		repo,
		token.NewGenerator(),
		service.LoggingNavigator{Logger: logger.Component("navigator")},
		service.SubmissionOptions{
			Mode:         models.Mode(cfg.Participation.Mode),
			OfferParam:   cfg.Participation.OfferParam,
			StoreTimeout: cfg.Participation.StoreTimeout,
		},
		logger.Component("submission"),
	)
	participations := service.NewParticipationService(repo, cfg.Participation.StoreTimeout, logger.Component("participations"))

	var drawCache cache.Cache = cache.NewMemory()
	if rdb != nil {
		drawCache = cache.NewCacheService(rdb)
	}

	workerDone := make(chan struct{})
	if cfg.Offers.StreamEnabled {
		worker := workers.NewOfferStreamWorker(rdb, participations, workers.OfferStreamConfig{
			StreamKey:     cfg.Offers.StreamKey,
			ConsumerGroup: cfg.Offers.ConsumerGroup,
			ConsumerName:  cfg.Offers.ConsumerName,
			TokenField:    cfg.Participation.OfferParam,
			RetryPending:  cfg.Offers.RetryPending,
		}, logger.Component("offer_stream"))
		go func() {
			defer close(workerDone)
			worker.Start(ctx)
		}()
	} else {
		close(workerDone)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(routerDeps{
		cfg:       cfg,
		submitter: submissions,
		lifecycle: participations,
		drawCache: drawCache,
		checks:    checks,
		logger:    logger.Component("http"),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLog.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error().Err(err).Msg("Server forced to shutdown")
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		appLog.Warn().Msg("Offer stream worker did not stop in time")
	}

	appLog.Info().Msg("Server exited")
}

func openRepository(cfg *config.Config, rdb platformredis.RedisClient) (repository.ParticipationRepository, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		return redisrepo.NewRedisParticipationRepository(rdb), nil
	case config.StoreBackendBolt:
		store, err := boltrepo.Open(cfg.Store.BoltPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreBackendSQLite:
		store, err := sqliterepo.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newRegistry(cfg *config.Config, rdb platformredis.RedisClient, regLog zerolog.Logger) registry.Registry {
	if cfg.Participation.Registry == config.RegistryRedis {
		if cfg.Participation.GlobalLock {
			regLog.Warn().Msg("PARTICIPATION_GLOBAL_LOCK is only honoured by the memory registry")
		}
		return registry.NewRedis(rdb, cfg.Participation.InFlightTTL, regLog)
	}

	var opts []registry.Option
	if cfg.Participation.GlobalLock {
		opts = append(opts, registry.WithGlobalLock())
	}
	return registry.NewMemory(opts...)
}
