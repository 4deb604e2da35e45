package retention

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmasys/internal/model"
)

func TestSeverityOrderingAndJSON(t *testing.T) {
	assert.True(t, SeverityInfo < SeverityAttention)
	assert.True(t, SeverityAttention < SeverityError)

	data, err := json.Marshal(SeverityAttention)
	require.NoError(t, err)
	assert.Equal(t, `"ATTENTION"`, string(data))
}

func TestActiveAlertsEmptyWhenNothingPending(t *testing.T) {
	ps := testPolicies(t)
	store := &stubReportStore{
		eligible:  map[EntityType]int64{},
		lastCheck: &model.IntegrityCheck{Status: model.IntegrityPass},
	}
	e := NewAlertEngine(store, ps)

	alerts, err := e.ActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts, "alerts clear when their condition clears")
}

func TestActiveAlertsUpcomingPerType(t *testing.T) {
	ps := testPolicies(t)
	store := &stubReportStore{
		eligible: map[EntityType]int64{
			EntitySale:     5,
			EntityCustomer: 2,
		},
	}
	e := NewAlertEngine(store, ps)

	alerts, err := e.ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Equal(t, AlertUpcomingArchival, a.Code)
		assert.Equal(t, SeverityInfo, a.Severity)
		assert.NotEmpty(t, a.Message)
	}
}
