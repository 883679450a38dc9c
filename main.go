package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/cache"
	"github.com/dcode-github/listing_analytics/config"
	"github.com/dcode-github/listing_analytics/controllers"
	"github.com/dcode-github/listing_analytics/jobs"
	"github.com/dcode-github/listing_analytics/logger"
	"github.com/dcode-github/listing_analytics/metrics"
	"github.com/dcode-github/listing_analytics/mirror"
	"github.com/dcode-github/listing_analytics/repository"
	"github.com/dcode-github/listing_analytics/routes"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

const syncTimeout = 30 * time.Minute

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}
}

func newMirrorStore(ctx context.Context, cfg config.MirrorConfig, rdb *redis.Client) (mirror.Store, error) {
	if cfg.Driver == "s3" {
		return mirror.NewS3Store(ctx, mirror.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			BatchSize:       cfg.BatchSize,
		})
	}
	return mirror.NewRedisStore(rdb, cfg.RedisPrefix, cfg.BatchSize), nil
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	appLog := logger.New(cfg.Log.Level, cfg.Log.Pretty, os.Stdout)

	ctx := context.Background()
	db, err := config.ConnectDB(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB connection")
		}
	}()

	rdb, err := config.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	store, err := newMirrorStore(ctx, cfg.Mirror, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up mirror store")
	}

	properties := repository.NewPropertyRepository(db.Properties)
	m := metrics.New()
	syncLog := appLog.With().Str("component", "mirror").Logger()
	synchronizer := mirror.NewSynchronizer(properties, store, mirror.Options{
		Concurrency: cfg.Mirror.Concurrency,
		Logger:      &syncLog,
	})
	syncJob := jobs.NewSyncJob(synchronizer, m, appLog)

	handler := &controllers.Handler{
		Properties:  properties,
		Users:       repository.NewUserRepository(db.Users),
		Aggregator:  analytics.NewAggregator(repository.NewAnalyticsRepository(db.Properties)),
		Mirror:      store,
		Sync:        syncJob,
		SyncTimeout: syncTimeout,
		Cache:       cache.New(rdb, cache.DefaultPrefix, cfg.Cache.TTL),
		Tokens:      utils.NewTokenIssuer(cfg.Auth.JWTKey, cfg.Auth.TokenTTL),
		Health: map[string]controllers.Pinger{
			"mongo": db.Ping,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Development: cfg.Development(),
	}

	router := mux.NewRouter()
	routes.Routes(router, handler, m)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        corsOptions.Handler(router),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   syncTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	if cfg.Sync.Enabled {
		scheduler, err := jobs.Schedule(cfg.Sync.Schedule, syncJob, syncTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule mirror sync")
		}
		scheduler.Start()
		log.Info().Str("schedule", cfg.Sync.Schedule).Msg("Mirror sync scheduled (UTC)")
		defer func() {
			<-scheduler.Stop().Done()
			log.Info().Msg("Mirror sync scheduler stopped")
		}()
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("mirror", cfg.Mirror.Driver).Msg("Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Error starting server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	log.Info().Msg("Server gracefully stopped")
}
