package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carelink/healthcare-portal/internal/api"
	"github.com/carelink/healthcare-portal/internal/appointment"
	"github.com/carelink/healthcare-portal/internal/config"
	"github.com/carelink/healthcare-portal/internal/db"
	"github.com/carelink/healthcare-portal/internal/hospital"
	"github.com/carelink/healthcare-portal/internal/logging"
	redisclient "github.com/carelink/healthcare-portal/internal/redis"
	"github.com/carelink/healthcare-portal/internal/verification"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("api-server", "dev")
		log.Fatal().Err(err).Msg("config load error")
	}

	logging.Init("api-server", cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
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
	controller := verification.NewController(registry)

	// Prime the verification snapshot; a failure here is not fatal, the
	// controller retries on the next refresh.
	warmCtx, cancelWarm := context.WithTimeout(rootCtx, 10*time.Second)
	if err := controller.Refresh(warmCtx); err != nil {
		log.Warn().Err(err).Msg("initial verification refresh failed")
	}
	cancelWarm()

	hospitals := hospital.NewService(hospital.NewPgRepository(pgPool))

	slotLocker := redisclient.NewRedisLocker(rdb, "slot", cfg.LockTTL)
	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), registry, slotLocker)

	router := api.NewRouter(api.RouterConfig{
		Hospitals:    hospitals,
		Appointments: appointments,
		Verification: controller,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
