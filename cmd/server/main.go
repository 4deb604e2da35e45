package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"farmasys/internal/config"
	"farmasys/internal/infra"
	"farmasys/internal/router"
	"farmasys/internal/service"
	"farmasys/internal/worker"
)

// @title FarmaSys API
// @version 1.0
// @description Backend multi-farmacia: vendas, estoque offline-first e retencao de dados.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	policies, err := service.PolicySetFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid retention policy configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	locker := infra.NewLocker(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async alert delivery: services enqueue, the pool consumes the Redis
	// lists and delivers by SMTP.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	pool := worker.NewPool(rdb, worker.NewAlertEmailWorker(mailer))
	pool.Start(ctx, cfg.WorkerPoolSize)

	r, retentionSvc := router.New(cfg, db, rdb, locker, policies, dispatcher)

	// Scheduled retention jobs: nightly archival, weekly audit, monthly purge.
	// The distributed lock inside the service keeps multi-instance deployments
	// from running the same job twice.
	scheduler, err := worker.NewScheduler(cfg.ArchivalCron, cfg.AuditCron, cfg.PurgeCron, worker.RetentionJobs{
		Archival: func(ctx context.Context) error {
			_, err := retentionSvc.RunArchival(ctx)
			return err
		},
		Audit: func(ctx context.Context) error {
			_, err := retentionSvc.RunAudit(ctx)
			return err
		},
		Purge: func(ctx context.Context) error {
			_, err := retentionSvc.RunPurge(ctx)
			return err
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid cron configuration")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("FarmaSys backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	scheduler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
