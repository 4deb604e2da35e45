package retention

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmasys/internal/model"
)

// stubReportStore implements ReportStore and AlertStore over fixed data.
type stubReportStore struct {
	// countsByMonth[month][type] drives CountArchivedBetween.
	countsByMonth map[time.Month]map[EntityType]int64
	flatCount     int64
	tenants       []TenantArchiveStats
	checks        []model.IntegrityCheck
	lastCheck     *model.IntegrityCheck
	purgeEligible int64
	eligible      map[EntityType]int64
}

func (s *stubReportStore) CountArchivedBetween(_ context.Context, t EntityType, from, _ time.Time) (int64, error) {
	if s.countsByMonth != nil {
		return s.countsByMonth[from.Month()][t], nil
	}
	return s.flatCount, nil
}

func (s *stubReportStore) TenantBreakdown(_ context.Context, _, _ time.Time) ([]TenantArchiveStats, error) {
	return s.tenants, nil
}

func (s *stubReportStore) ChecksBetween(_ context.Context, _, _ time.Time) ([]model.IntegrityCheck, error) {
	return s.checks, nil
}

func (s *stubReportStore) LastCheck(_ context.Context) (*model.IntegrityCheck, error) {
	return s.lastCheck, nil
}

func (s *stubReportStore) CountPurgeEligible(_ context.Context, _ time.Time) (int64, error) {
	return s.purgeEligible, nil
}

func (s *stubReportStore) CountEligibleBefore(_ context.Context, t EntityType, _ time.Time) (int64, error) {
	return s.eligible[t], nil
}

var (
	_ ReportStore = (*stubReportStore)(nil)
	_ AlertStore  = (*stubReportStore)(nil)
)

func TestMonthlyReportAggregation(t *testing.T) {
	ps := testPolicies(t)
	tenantA, tenantB := uuid.New(), uuid.New()
	store := &stubReportStore{
		flatCount: 10,
		tenants: []TenantArchiveStats{
			{TenantID: tenantA, ArchivedCount: 30, TotalValue: decimal.RequireFromString("1500.00"), ControlledCount: 4},
			{TenantID: tenantB, ArchivedCount: 10, TotalValue: decimal.RequireFromString("500.50")},
		},
		checks: []model.IntegrityCheck{
			{Status: model.IntegrityPass},
			{Status: model.IntegrityAttention},
		},
	}

	b := NewReportBuilder(store, ps, nil)
	report, err := b.Monthly(context.Background(), 2026, time.July)
	require.NoError(t, err)

	// 4 archivable types × 10 each.
	assert.Equal(t, int64(40), report.TotalArchived)
	assert.Equal(t, int64(10), report.PerType[EntitySale])
	assert.Equal(t, "2000.50", report.TotalValue.StringFixed(2))
	assert.Equal(t, model.IntegrityAttention, report.Integrity, "worst check status wins")
	assert.Equal(t, "2000.50", report.Extras["valor_total_arquivado"])
}

func TestAnnualReportTrendAndPeak(t *testing.T) {
	ps := testPolicies(t)
	counts := make(map[time.Month]map[EntityType]int64)
	for m := time.January; m <= time.December; m++ {
		counts[m] = map[EntityType]int64{EntitySale: 10}
	}
	counts[time.November] = map[EntityType]int64{EntitySale: 50} // peak, second half grows

	store := &stubReportStore{countsByMonth: counts}
	b := NewReportBuilder(store, ps, nil)
	report, err := b.Annual(context.Background(), 2025)
	require.NoError(t, err)

	require.Len(t, report.Months, 12)
	assert.Equal(t, int64(160), report.TotalArchived)
	assert.Equal(t, time.November, report.PeakMonth)
	assert.Equal(t, int64(50), report.PeakCount)
	assert.Equal(t, TrendCrescente, report.Trend)
	assert.Equal(t, int64(160), report.ProjectedNextYear) // monthly avg times twelve, no flooring
}

func TestClassifyTrendBoundaries(t *testing.T) {
	assert.Equal(t, TrendEstavel, classifyTrend(100, 110), "+10% exactly is stable")
	assert.Equal(t, TrendCrescente, classifyTrend(100, 111))
	assert.Equal(t, TrendEstavel, classifyTrend(100, 90), "-10% exactly is stable")
	assert.Equal(t, TrendDecrescente, classifyTrend(100, 89))
	assert.Equal(t, TrendEstavel, classifyTrend(0, 0))
	assert.Equal(t, TrendCrescente, classifyTrend(0, 5))
}

func TestDashboard(t *testing.T) {
	ps := testPolicies(t)
	lastCheck := &model.IntegrityCheck{Status: model.IntegrityAttention, CorruptCount: 2, PercentIntact: 96}
	store := &stubReportStore{
		flatCount:     3,
		lastCheck:     lastCheck,
		purgeEligible: 7,
		eligible:      map[EntityType]int64{EntitySale: 12},
	}

	alerts := NewAlertEngine(store, ps)
	b := NewReportBuilder(store, ps, alerts)
	dash, err := b.BuildDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.Last7Days[EntitySale])
	assert.Equal(t, int64(3), dash.Last30Days[EntityCustomer])
	assert.Equal(t, int64(7), dash.PurgeEligible)
	assert.Equal(t, int64(12), dash.UpcomingCount)
	require.NotNil(t, dash.LastCheck)

	// UPCOMING (info) < PENDING_PURGE (attention) < INTEGRITY_FAILED (error).
	require.Len(t, dash.Alerts, 3)
	assert.Equal(t, AlertUpcomingArchival, dash.Alerts[0].Code)
	assert.Equal(t, AlertPendingPurge, dash.Alerts[1].Code)
	assert.Equal(t, AlertIntegrityFailed, dash.Alerts[2].Code)
}
