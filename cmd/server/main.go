package main

import (
	"context"
	"os/signal"
	"syscall"

	"anoa.com/newsportal/internal/bootstrap"
	"anoa.com/newsportal/internal/config"
	"anoa.com/newsportal/internal/server"
	"anoa.com/newsportal/pkg/database"
	"anoa.com/newsportal/pkg/logger"
	"anoa.com/newsportal/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)
	if cfg.EphemeralJWTSecret {
		log.Warn().Msg("JWT_SECRET not set, signing with a random key; tokens die with the process")
	}

	db, err := database.Connect(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.IsDevelopment() && cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, caches will fail open")
		}
		defer redisClient.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, running without cache and cooldowns")
	}

	var mediaStorage storage.MediaStorage = storage.Disabled{}
	if cfg.CloudinaryURL != "" {
		mediaStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
		}
	} else {
		log.Warn().Msg("CLOUDINARY_URL not set, media uploads are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := server.NewServer(server.Options{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Storage:  mediaStorage,
		Registry: registry,
		Log:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
}
