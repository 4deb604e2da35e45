package retention

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmasys/internal/model"
)

// stubAuditSource serves a fixed sample of stored archive rows.
type stubAuditSource struct {
	entityType EntityType
	sample     []StoredArchive
}

func (s *stubAuditSource) Type() EntityType { return s.entityType }

func (s *stubAuditSource) Sample(_ context.Context, limit int, _ bool) ([]StoredArchive, error) {
	if len(s.sample) > limit {
		return s.sample[:limit], nil
	}
	return s.sample, nil
}

var _ AuditSource = (*stubAuditSource)(nil)

// stubCheckStore records saved checks.
type stubCheckStore struct {
	saved []model.IntegrityCheck
}

func (s *stubCheckStore) SaveCheck(_ context.Context, check *model.IntegrityCheck) error {
	s.saved = append(s.saved, *check)
	return nil
}

// intactArchive builds a stored archive whose hash matches its fields.
func intactArchive(t *testing.T) StoredArchive {
	t.Helper()
	fields := []Field{{"original_id", uuid.NewString()}, {"total_value", "10.00"}}
	hash, err := Hasher{}.Sum(CurrentSchemaVersion, fields)
	require.NoError(t, err)
	return StoredArchive{
		OriginalID:    uuid.New(),
		SchemaVersion: CurrentSchemaVersion,
		StoredHash:    hash,
		Fields:        fields,
	}
}

func corruptArchive(t *testing.T) StoredArchive {
	a := intactArchive(t)
	// A flipped column after archival no longer matches the stored hash.
	a.Fields[1].Value = "999.00"
	return a
}

func TestAuditorSampleBelowThresholdIsAttention(t *testing.T) {
	src := &stubAuditSource{entityType: EntitySale}
	for i := 0; i < 97; i++ {
		src.sample = append(src.sample, intactArchive(t))
	}
	for i := 0; i < 3; i++ {
		src.sample = append(src.sample, corruptArchive(t))
	}

	store := &stubCheckStore{}
	a := NewAuditor([]AuditSource{src}, store, AuditorConfig{SampleSize: 100, MinPercent: 98})
	checks, err := a.RunCheck(context.Background())
	require.NoError(t, err)
	require.Len(t, checks, 1)

	check := checks[0]
	assert.Equal(t, 100, check.SampleSize)
	assert.Equal(t, 97, check.IntactCount)
	assert.Equal(t, 3, check.CorruptCount)
	assert.InDelta(t, 97.0, check.PercentIntact, 0.001)
	assert.Equal(t, model.IntegrityAttention, check.Status)

	var ids []string
	require.NoError(t, json.Unmarshal(check.CorruptIDs, &ids))
	assert.Len(t, ids, 3)

	require.Len(t, store.saved, 1, "every check is persisted")
}

func TestAuditorPassAtLowerThreshold(t *testing.T) {
	src := &stubAuditSource{entityType: EntitySale}
	for i := 0; i < 97; i++ {
		src.sample = append(src.sample, intactArchive(t))
	}
	for i := 0; i < 3; i++ {
		src.sample = append(src.sample, corruptArchive(t))
	}

	a := NewAuditor([]AuditSource{src}, &stubCheckStore{}, AuditorConfig{SampleSize: 100, MinPercent: 95})
	checks, err := a.RunCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.IntegrityPass, checks[0].Status)
}

func TestAuditorEmptyArchiveIsFullyIntact(t *testing.T) {
	src := &stubAuditSource{entityType: EntityCustomer}
	a := NewAuditor([]AuditSource{src}, &stubCheckStore{}, AuditorConfig{SampleSize: 100, MinPercent: 98})
	checks, err := a.RunCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, checks[0].SampleSize)
	assert.Equal(t, float64(100), checks[0].PercentIntact)
	assert.Equal(t, model.IntegrityPass, checks[0].Status)
}

func TestAuditorUnknownSchemaVersionIsCorrupt(t *testing.T) {
	bad := intactArchive(t)
	bad.SchemaVersion = 99
	src := &stubAuditSource{entityType: EntitySale, sample: []StoredArchive{bad}}

	a := NewAuditor([]AuditSource{src}, &stubCheckStore{}, AuditorConfig{SampleSize: 10, MinPercent: 98})
	checks, err := a.RunCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checks[0].CorruptCount)
}

func TestClassifyBoundary(t *testing.T) {
	assert.Equal(t, model.IntegrityPass, Classify(98.0, 98.0), "exactly at threshold passes")
	assert.Equal(t, model.IntegrityAttention, Classify(97.999, 98.0))
	assert.Equal(t, model.IntegrityPass, Classify(100, 98.0))
}
