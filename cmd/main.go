package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ridetracker/config"
	"ridetracker/pkg/api"
	"ridetracker/pkg/bot"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/platform"
	"ridetracker/pkg/secure"
	"ridetracker/service"
	"ridetracker/storage"
	"ridetracker/storage/memory"
	"ridetracker/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	stg, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", logger.String("driver", cfg.StorageDriver), logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	signer := secure.NewSigner(cfg.JWTSecret)
	opts := service.Options{
		Location:    cfg.Location(),
		Signer:      signer,
		SyncTimeout: cfg.UberSyncTimeout,
	}

	if cfg.UberEnabled() {
		sealer, err := secure.NewSealer([]byte(cfg.TokenEncryptionKey))
		if err != nil {
			log.Error("TOKEN_ENCRYPTION_KEY must be 32 bytes when Uber is configured", logger.Error(err))
			os.Exit(1)
		}
		opts.Sealer = sealer
		opts.Uber = platform.NewUberClient(cfg, &http.Client{Timeout: cfg.UberSyncTimeout}, log)
		log.Info("Uber integration enabled")
	}

	svc := service.New(stg, log, opts)

	if cfg.TelegramBotToken != "" {
		driverBot, err := bot.New(cfg.TelegramBotToken, svc, signer, cfg.Location(), log)
		if err != nil {
			log.Error("failed to initialize telegram bot", logger.Error(err))
			os.Exit(1)
		}
		go driverBot.Start()
		defer driverBot.Stop()
	} else {
		log.Warning("TG_BOT_TOKEN is empty, telegram bot disabled")
	}

	server := api.New(svc, signer, log, cfg.Location())
	if err := server.Run(ctx, cfg.HTTPPort); err != nil {
		log.Error("HTTP API stopped", logger.Error(err))
		stop()
	}

	log.Info("shutting down")
}

func newStorage(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warning("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}
	pg, err := postgres.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return pg, nil
}
