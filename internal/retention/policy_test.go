package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicies(t *testing.T) *PolicySet {
	t.Helper()
	ps, err := NewPolicySet(map[EntityType]int{
		EntitySale:          5,
		EntityStockMovement: 2,
		EntityCustomer:      5,
		EntitySupplier:      5,
	}, []EntityType{EntityProduct, EntityPrescription}, 10)
	require.NoError(t, err)
	return ps
}

func TestNewPolicySetRejectsNonPositiveYears(t *testing.T) {
	_, err := NewPolicySet(map[EntityType]int{EntitySale: 0}, nil, 10)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, EntitySale, cfgErr.Type)

	_, err = NewPolicySet(map[EntityType]int{EntitySale: 5}, nil, 0)
	assert.Error(t, err)
}

func TestResolveProtected(t *testing.T) {
	ps := testPolicies(t)

	pol, err := ps.Resolve(EntityPrescription)
	require.NoError(t, err)
	assert.True(t, pol.Protected)

	pol, err = ps.Resolve(EntitySale)
	require.NoError(t, err)
	assert.False(t, pol.Protected)
	assert.Equal(t, 5, pol.Years)
}

func TestResolveUnknownTypeIsConfigurationError(t *testing.T) {
	ps := testPolicies(t)
	_, err := ps.Resolve(EntityType("invoice"))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestArchivableTypesStableOrderExcludesProtected(t *testing.T) {
	ps := testPolicies(t)
	types := ps.ArchivableTypes()
	assert.Equal(t, []EntityType{EntityCustomer, EntitySale, EntityStockMovement, EntitySupplier}, types)
}

func TestCutoff(t *testing.T) {
	ps := testPolicies(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	cutoff, err := ps.Cutoff(EntitySale, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 8, 28, 12, 0, 0, 0, time.UTC), cutoff)

	cutoff, err = ps.Cutoff(EntityStockMovement, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 8, 28, 12, 0, 0, 0, time.UTC), cutoff)

	_, err = ps.Cutoff(EntityProduct, now)
	assert.Error(t, err, "protected types have no archival cutoff")
}

func TestPurgeCutoff(t *testing.T) {
	ps := testPolicies(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), ps.PurgeCutoff(now))
}
