package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RetentionJobs holds the scheduled retention entry points. The scheduler
// only triggers them; locking and error handling live behind each func.
type RetentionJobs struct {
	Archival func(ctx context.Context) error
	Audit    func(ctx context.Context) error
	Purge    func(ctx context.Context) error
}

// Scheduler drives the periodic retention jobs from cron expressions.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the three retention jobs on their cron specs.
// An invalid expression is a deployment error and fails startup.
func NewScheduler(archivalSpec, auditSpec, purgeSpec string, jobs RetentionJobs) (*Scheduler, error) {
	c := cron.New()

	register := func(spec, name string, fn func(ctx context.Context) error) error {
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
			defer cancel()
			started := time.Now()
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("scheduled retention job failed")
				return
			}
			log.Info().Str("job", name).Dur("took", time.Since(started)).Msg("scheduled retention job finished")
		})
		return err
	}

	if err := register(archivalSpec, "archival", jobs.Archival); err != nil {
		return nil, err
	}
	if err := register(auditSpec, "audit", jobs.Audit); err != nil {
		return nil, err
	}
	if err := register(purgeSpec, "purge", jobs.Purge); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
