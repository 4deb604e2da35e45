package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"

	"farmasys/internal/config"
	"farmasys/internal/infra"
	"farmasys/internal/model"
	"farmasys/internal/repository"
	"farmasys/internal/retention"
	"farmasys/internal/worker"
)

// ErrJobRunning is returned when another instance holds the job lock.
var ErrJobRunning = errors.New("tarefa de retencao ja em execucao")

type RetentionService interface {
	RunArchival(ctx context.Context) (*retention.RunSummary, error)
	RunAudit(ctx context.Context) ([]model.IntegrityCheck, error)
	RunPurge(ctx context.Context) (*retention.PurgeSummary, error)

	MonthlyReport(ctx context.Context, year int, month time.Month) (*retention.MonthlyReport, error)
	AnnualReport(ctx context.Context, year int) (*retention.AnnualReport, error)
	Dashboard(ctx context.Context) (*retention.Dashboard, error)
	Alerts(ctx context.Context) ([]retention.Alert, error)
	ExportMonthlyPDF(ctx context.Context, year int, month time.Month) ([]byte, error)
	ExportMonthlyXLSX(ctx context.Context, year int, month time.Month) ([]byte, error)
}

type retentionService struct {
	cfg        *config.Config
	locker     *redislock.Client
	archiver   *retention.Archiver
	auditor    *retention.Auditor
	reports    *retention.ReportBuilder
	alerts     *retention.AlertEngine
	dispatcher *worker.Dispatcher
}

// PolicySetFromConfig builds the retention policy set from environment
// configuration. A non-positive year or an unknown protected type is a
// deployment error surfaced at startup.
func PolicySetFromConfig(cfg *config.Config) (*retention.PolicySet, error) {
	years := map[retention.EntityType]int{
		retention.EntitySale:          cfg.RetentionYearsSale,
		retention.EntityStockMovement: cfg.RetentionYearsStockMovement,
		retention.EntityCustomer:      cfg.RetentionYearsCustomer,
		retention.EntitySupplier:      cfg.RetentionYearsSupplier,
	}
	var protected []retention.EntityType
	for _, t := range strings.Split(cfg.ProtectedTypes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			protected = append(protected, retention.EntityType(t))
		}
	}
	return retention.NewPolicySet(years, protected, cfg.MaxArchiveYears)
}

// NewRetentionService wires the retention engine against the archive
// repository. The locker serializes jobs across instances; a nil locker (unit
// tests) disables locking.
func NewRetentionService(
	cfg *config.Config,
	policies *retention.PolicySet,
	repo *repository.ArchiveRepository,
	locker *redislock.Client,
	dispatcher *worker.Dispatcher,
) RetentionService {
	archiver := retention.NewArchiver(policies, repo.Sources(), retention.ArchiverConfig{
		BatchSize:  cfg.ArchiveBatchSize,
		BatchPause: time.Duration(cfg.ArchiveBatchPauseMS) * time.Millisecond,
		Reason:     "retention_policy",
	})
	auditor := retention.NewAuditor(repo.AuditSources(), repo, retention.AuditorConfig{
		SampleSize: cfg.IntegritySampleSize,
		MinPercent: cfg.IntegrityMinPercent,
		Random:     cfg.IntegritySampleRand,
	})
	alerts := retention.NewAlertEngine(repo, policies)
	reports := retention.NewReportBuilder(repo, policies, alerts)

	return &retentionService{
		cfg:        cfg,
		locker:     locker,
		archiver:   archiver,
		auditor:    auditor,
		reports:    reports,
		alerts:     alerts,
		dispatcher: dispatcher,
	}
}

// withJobLock runs fn under the named distributed lock. Concurrent runs of
// the same job on other instances get ErrJobRunning instead of doubling work.
func (s *retentionService) withJobLock(ctx context.Context, jobKind string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	lock, err := infra.AcquireJobLock(ctx, s.locker, jobKind, ttl)
	if infra.ErrLockHeld(err) {
		return ErrJobRunning
	}
	if err != nil {
		return err
	}
	defer lock.Release(ctx)
	return fn(ctx)
}

func (s *retentionService) RunArchival(ctx context.Context) (*retention.RunSummary, error) {
	var summary *retention.RunSummary
	err := s.withJobLock(ctx, "archival", 2*time.Hour, func(ctx context.Context) error {
		var runErr error
		summary, runErr = s.archiver.Run(ctx)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RunAudit samples the archive store and persists one integrity check per
// type. Any check below the configured threshold triggers an alert email to
// the operations mailbox.
func (s *retentionService) RunAudit(ctx context.Context) ([]model.IntegrityCheck, error) {
	var checks []model.IntegrityCheck
	err := s.withJobLock(ctx, "audit", 30*time.Minute, func(ctx context.Context) error {
		var runErr error
		checks, runErr = s.auditor.RunCheck(ctx)
		return runErr
	})
	if err != nil {
		return nil, err
	}

	for i := range checks {
		if checks[i].Status != model.IntegrityAttention {
			continue
		}
		s.notifyIntegrityFailure(ctx, &checks[i])
	}
	return checks, nil
}

func (s *retentionService) notifyIntegrityFailure(ctx context.Context, check *model.IntegrityCheck) {
	if s.dispatcher == nil || s.cfg.AlertEmailTo == "" {
		return
	}
	payload := worker.AlertEmailPayload{
		ToEmail: s.cfg.AlertEmailTo,
		Subject: fmt.Sprintf("[FarmaSys] Falha de integridade no arquivo: %s", check.EntityType),
		Body: fmt.Sprintf(
			"A auditoria de integridade encontrou registros corrompidos.\n\n"+
				"Tipo: %s\nAmostra: %d\nIntactos: %d\nCorrompidos: %d\nPercentual: %.2f%%\n\n"+
				"Os ids afetados estao registrados na verificacao %s.",
			check.EntityType, check.SampleSize, check.IntactCount, check.CorruptCount,
			check.PercentIntact, check.ID),
	}
	if err := s.dispatcher.EnqueueAlertEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("failed to enqueue integrity alert email")
	}
}

func (s *retentionService) RunPurge(ctx context.Context) (*retention.PurgeSummary, error) {
	var summary *retention.PurgeSummary
	err := s.withJobLock(ctx, "purge", time.Hour, func(ctx context.Context) error {
		var runErr error
		summary, runErr = s.archiver.Purge(ctx)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *retentionService) MonthlyReport(ctx context.Context, year int, month time.Month) (*retention.MonthlyReport, error) {
	return s.reports.Monthly(ctx, year, month)
}

func (s *retentionService) AnnualReport(ctx context.Context, year int) (*retention.AnnualReport, error) {
	return s.reports.Annual(ctx, year)
}

func (s *retentionService) Dashboard(ctx context.Context) (*retention.Dashboard, error) {
	return s.reports.BuildDashboard(ctx)
}

func (s *retentionService) Alerts(ctx context.Context) ([]retention.Alert, error) {
	return s.alerts.ActiveAlerts(ctx)
}

func (s *retentionService) ExportMonthlyPDF(ctx context.Context, year int, month time.Month) ([]byte, error) {
	report, err := s.reports.Monthly(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return infra.RenderMonthlyReportPDF(report)
}

func (s *retentionService) ExportMonthlyXLSX(ctx context.Context, year int, month time.Month) ([]byte, error) {
	report, err := s.reports.Monthly(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return infra.RenderMonthlyReportXLSX(report)
}
