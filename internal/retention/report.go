package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"farmasys/internal/model"
)

// Trend classification of annual archival volume (first half vs second half,
// ±10% variation threshold).
const (
	TrendCrescente   = "CRESCENTE"
	TrendDecrescente = "DECRESCENTE"
	TrendEstavel     = "ESTAVEL"
)

const trendThreshold = 0.10

// TenantArchiveStats is the per-tenant slice of a monthly report.
type TenantArchiveStats struct {
	TenantID        uuid.UUID       `json:"tenant_id"`
	ArchivedCount   int64           `json:"archived_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ControlledCount int64           `json:"controlled_count"`
}

// MonthlyReport aggregates archival activity for one calendar month.
type MonthlyReport struct {
	Year          int                  `json:"year"`
	Month         time.Month           `json:"month"`
	PerType       map[EntityType]int64 `json:"per_type"`
	TotalArchived int64                `json:"total_archived"`
	Tenants       []TenantArchiveStats `json:"tenants"`
	TotalValue    decimal.Decimal      `json:"total_value"`
	Integrity     string               `json:"integrity"` // worst check status in period
	Extras        map[string]string    `json:"extras,omitempty"`
}

// AnnualReport sums twelve monthly reports.
type AnnualReport struct {
	Year              int             `json:"year"`
	Months            []MonthlyReport `json:"months"`
	TotalArchived     int64           `json:"total_archived"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Trend             string          `json:"trend"`
	PeakMonth         time.Month      `json:"peak_month"`
	PeakCount         int64           `json:"peak_count"`
	ProjectedNextYear int64           `json:"projected_next_year"`
}

// Dashboard is the rolling operational view.
type Dashboard struct {
	Last7Days     map[EntityType]int64  `json:"last_7_days"`
	Last30Days    map[EntityType]int64  `json:"last_30_days"`
	LastCheck     *model.IntegrityCheck `json:"last_check,omitempty"`
	UpcomingCount int64                 `json:"upcoming_count"`
	PurgeEligible int64                 `json:"purge_eligible"`
	Alerts        []Alert               `json:"alerts"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// ReportStore is the read-only archive collaborator reports aggregate over.
// Implementations should read a consistent snapshot so a report never sees a
// partially committed batch.
type ReportStore interface {
	CountArchivedBetween(ctx context.Context, t EntityType, from, to time.Time) (int64, error)
	// TenantBreakdown aggregates archived sales per tenant in the period.
	TenantBreakdown(ctx context.Context, from, to time.Time) ([]TenantArchiveStats, error)
	ChecksBetween(ctx context.Context, from, to time.Time) ([]model.IntegrityCheck, error)
	LastCheck(ctx context.Context) (*model.IntegrityCheck, error)
	CountPurgeEligible(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportBuilder assembles monthly, annual, and dashboard views.
type ReportBuilder struct {
	store    ReportStore
	policies *PolicySet
	alerts   *AlertEngine
	now      func() time.Time
}

func NewReportBuilder(store ReportStore, policies *PolicySet, alerts *AlertEngine) *ReportBuilder {
	return &ReportBuilder{store: store, policies: policies, alerts: alerts, now: time.Now}
}

// Monthly builds the report for one calendar month.
func (b *ReportBuilder) Monthly(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	report := &MonthlyReport{
		Year:       year,
		Month:      month,
		PerType:    make(map[EntityType]int64),
		TotalValue: decimal.Zero,
		Integrity:  model.IntegrityPass,
	}

	for _, t := range b.policies.ArchivableTypes() {
		n, err := b.store.CountArchivedBetween(ctx, t, from, to)
		if err != nil {
			return nil, &TransientStorageError{Op: "count " + string(t), Err: err}
		}
		report.PerType[t] = n
		report.TotalArchived += n
	}

	tenants, err := b.store.TenantBreakdown(ctx, from, to)
	if err != nil {
		return nil, &TransientStorageError{Op: "tenant breakdown", Err: err}
	}
	report.Tenants = tenants
	for _, t := range tenants {
		report.TotalValue = report.TotalValue.Add(t.TotalValue)
	}

	checks, err := b.store.ChecksBetween(ctx, from, to)
	if err != nil {
		return nil, &TransientStorageError{Op: "checks", Err: err}
	}
	for _, c := range checks {
		if c.Status == model.IntegrityAttention {
			report.Integrity = model.IntegrityAttention
			break
		}
	}

	report.Extras = map[string]string{
		"valor_total_arquivado":   report.TotalValue.StringFixed(2),
		"verificacoes_no_periodo": intValue(len(checks)),
	}
	return report, nil
}

// Annual sums the twelve monthly reports of a year, classifies the trend,
// identifies the peak month, and projects next year naively (monthly average
// times twelve).
func (b *ReportBuilder) Annual(ctx context.Context, year int) (*AnnualReport, error) {
	report := &AnnualReport{Year: year, TotalValue: decimal.Zero}

	var firstHalf, secondHalf int64
	for m := time.January; m <= time.December; m++ {
		monthly, err := b.Monthly(ctx, year, m)
		if err != nil {
			return nil, err
		}
		report.Months = append(report.Months, *monthly)
		report.TotalArchived += monthly.TotalArchived
		report.TotalValue = report.TotalValue.Add(monthly.TotalValue)

		if m <= time.June {
			firstHalf += monthly.TotalArchived
		} else {
			secondHalf += monthly.TotalArchived
		}
		if monthly.TotalArchived > report.PeakCount {
			report.PeakCount = monthly.TotalArchived
			report.PeakMonth = m
		}
	}

	report.Trend = classifyTrend(firstHalf, secondHalf)
	// Naive projection: the monthly average times twelve is the prior-year
	// total itself, with nothing lost to integer division.
	report.ProjectedNextYear = report.TotalArchived
	return report, nil
}

// classifyTrend compares half-year totals at the ±10% threshold.
func classifyTrend(firstHalf, secondHalf int64) string {
	if firstHalf == 0 {
		if secondHalf > 0 {
			return TrendCrescente
		}
		return TrendEstavel
	}
	variation := float64(secondHalf-firstHalf) / float64(firstHalf)
	switch {
	case variation > trendThreshold:
		return TrendCrescente
	case variation < -trendThreshold:
		return TrendDecrescente
	default:
		return TrendEstavel
	}
}

// BuildDashboard assembles the rolling 7/30-day view with the latest
// integrity status and the active alerts.
func (b *ReportBuilder) BuildDashboard(ctx context.Context) (*Dashboard, error) {
	now := b.now()
	dash := &Dashboard{
		Last7Days:   make(map[EntityType]int64),
		Last30Days:  make(map[EntityType]int64),
		GeneratedAt: now,
	}

	for _, t := range b.policies.ArchivableTypes() {
		n7, err := b.store.CountArchivedBetween(ctx, t, now.AddDate(0, 0, -7), now)
		if err != nil {
			return nil, &TransientStorageError{Op: "dashboard 7d", Err: err}
		}
		n30, err := b.store.CountArchivedBetween(ctx, t, now.AddDate(0, 0, -30), now)
		if err != nil {
			return nil, &TransientStorageError{Op: "dashboard 30d", Err: err}
		}
		dash.Last7Days[t] = n7
		dash.Last30Days[t] = n30
	}

	last, err := b.store.LastCheck(ctx)
	if err == nil {
		dash.LastCheck = last
	}

	purgeable, err := b.store.CountPurgeEligible(ctx, b.policies.PurgeCutoff(now))
	if err != nil {
		return nil, &TransientStorageError{Op: "dashboard purge count", Err: err}
	}
	dash.PurgeEligible = purgeable

	if b.alerts != nil {
		alerts, err := b.alerts.ActiveAlerts(ctx)
		if err != nil {
			return nil, err
		}
		dash.Alerts = alerts
		for _, a := range alerts {
			if a.Code == AlertUpcomingArchival {
				dash.UpcomingCount += a.Count
			}
		}
	}
	return dash, nil
}
