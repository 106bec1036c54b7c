// Command sweep runs a single booking expiry pass and exits. Meant for cron.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nekogravitycat/turf-booking-backend/internal/app"
	"github.com/nekogravitycat/turf-booking-backend/internal/config"
	"github.com/nekogravitycat/turf-booking-backend/internal/db"
	"github.com/nekogravitycat/turf-booking-backend/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", true).Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New(cfg.LogLevel, !cfg.IsProduction)

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	container, err := app.NewContainer(cfg, pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init app")
	}
	defer container.Close()

	res, err := container.Sweeper.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		os.Exit(1)
	}
	log.Info().
		Int("scanned", res.Scanned).
		Int("expired", res.Expired).
		Int("failed", res.Failed).
		Msg("sweep done")
}
