package main

import (
	"context"
	"os"

	"ridetracker/config"
	"ridetracker/pkg/logger"
	"ridetracker/storage/postgres"
)

// Wipes driver activity while keeping registered users.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	_, err = pg.Pool().Exec(context.Background(),
		"TRUNCATE TABLE rides, expenses, online_sessions, user_platform_tokens")
	if err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
		return
	}
	log.Info("truncated rides, expenses, online_sessions and user_platform_tokens")
}
