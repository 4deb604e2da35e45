// cmd/retentionjob/main.go — runs one retention job (archival, audit or
// purge) and exits. Meant for operators and external schedulers; the server
// runs the same jobs on its internal cron.
//
// Uso: go run cmd/retentionjob/main.go -job archival
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"farmasys/internal/config"
	"farmasys/internal/infra"
	"farmasys/internal/repository"
	"farmasys/internal/service"
	"farmasys/internal/worker"
)

func main() {
	job := flag.String("job", "archival", "job to run: archival | audit | purge")
	timeout := flag.Duration("timeout", 2*time.Hour, "job deadline")
	flag.Parse()

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

	svc := service.NewRetentionService(cfg, policies,
		repository.NewArchiveRepository(db), infra.NewLocker(rdb), worker.NewDispatcher(rdb))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var out interface{}
	switch *job {
	case "archival":
		out, err = svc.RunArchival(ctx)
	case "audit":
		out, err = svc.RunAudit(ctx)
	case "purge":
		out, err = svc.RunPurge(ctx)
	default:
		log.Fatal().Str("job", *job).Msg("unknown job")
	}
	if err != nil {
		log.Fatal().Err(err).Str("job", *job).Msg("retention job failed")
	}

	encoded, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(encoded))
}
