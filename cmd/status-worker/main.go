package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carelink/healthcare-portal/internal/appointment"
	"github.com/carelink/healthcare-portal/internal/config"
	"github.com/carelink/healthcare-portal/internal/db"
	"github.com/carelink/healthcare-portal/internal/logging"
	redisclient "github.com/carelink/healthcare-portal/internal/redis"
	"github.com/carelink/healthcare-portal/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("status-worker", "dev")
		log.Fatal().Err(err).Msg("config load error")
	}

	logging.Init("status-worker", cfg.Env)
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("status-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	registry := verification.NewPgRegistry(pgPool)
	locker := redisclient.NewRedisLocker(rdb, "slot", cfg.LockTTL)
	svc := appointment.NewService(appointment.NewPgRepository(pgPool), registry, locker)

	// Run once at startup
	runOnce(rootCtx, svc)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping status worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := svc.CompleteElapsedAppointments(runCtx); err != nil {
		log.Error().Err(err).Msg("status sweep error")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("status sweep complete")
}
