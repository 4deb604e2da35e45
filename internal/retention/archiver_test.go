package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmasys/internal/model"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubRecord is one live soft-deleted record in the stub source.
type stubRecord struct {
	id        uuid.UUID
	deletedAt time.Time
	archived  bool
}

// stubSource is an in-memory Source with configurable failure behavior.
type stubSource struct {
	entityType EntityType
	records    []*stubRecord

	commitCalls int
	failCommit  bool
	fetchErr    error
	onCommit    func()

	committed [][]uuid.UUID
	lastRows  []ArchiveRow
}

func newStubSource(t EntityType) *stubSource { return &stubSource{entityType: t} }

func (s *stubSource) add(deletedAt time.Time) *stubRecord {
	r := &stubRecord{id: uuid.New(), deletedAt: deletedAt}
	s.records = append(s.records, r)
	return r
}

func (s *stubSource) Type() EntityType { return s.entityType }

func (s *stubSource) FetchEligible(_ context.Context, cutoff time.Time, limit int) ([]Candidate, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []Candidate
	for _, r := range s.records {
		if r.archived || !r.deletedAt.Before(cutoff) {
			continue
		}
		out = append(out, Candidate{
			OriginalID: r.id,
			TenantID:   uuid.Nil,
			DeletedAt:  r.deletedAt,
			Fields:     []Field{{"original_id", r.id.String()}},
			Snapshot:   []byte(`{}`),
			Row:        &model.ArchivedSale{},
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubSource) CommitBatch(_ context.Context, rows []ArchiveRow, ids []uuid.UUID) error {
	s.commitCalls++
	if s.failCommit {
		return errors.New("deadlock detected")
	}
	for _, id := range ids {
		for _, r := range s.records {
			if r.id == id {
				r.archived = true
			}
		}
	}
	s.committed = append(s.committed, ids)
	s.lastRows = rows
	if s.onCommit != nil {
		s.onCommit()
	}
	return nil
}

func (s *stubSource) PurgeExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

var _ Source = (*stubSource)(nil)

func yearsAgo(n int) time.Time { return time.Now().UTC().AddDate(-n, 0, 0) }

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestArchiverRunArchivesOnlyExpired(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	old := src.add(yearsAgo(8))    // past the 5y policy
	recent := src.add(yearsAgo(1)) // still in retention
	boundary := src.add(yearsAgo(6))

	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 10})
	summary, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalArchived)
	assert.True(t, old.archived)
	assert.True(t, boundary.archived)
	assert.False(t, recent.archived)

	// Header stamped on every committed row.
	for _, row := range src.lastRows {
		meta := row.(*model.ArchivedSale).ArchiveMeta
		assert.Equal(t, CurrentSchemaVersion, meta.SchemaVersion)
		assert.NotEmpty(t, meta.IntegrityHash)
		assert.Equal(t, "retention_policy", meta.ArchivalReason)
		assert.False(t, meta.ArchivedAt.IsZero())
	}
}

func TestArchiverRunIsIdempotent(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	src.add(yearsAgo(8))

	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 10})
	first, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalArchived)

	second, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.TotalArchived, "already archived records must not be re-archived")
}

func TestArchiverBatchAtomicity(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	for i := 0; i < 5; i++ {
		src.add(yearsAgo(7))
	}
	src.failCommit = true

	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 10})
	summary, err := a.Run(context.Background())
	require.NoError(t, err, "a per-type failure is reported in the summary, not as a run error")

	require.Len(t, summary.Types, 4)
	var saleRes *TypeResult
	for i := range summary.Types {
		if summary.Types[i].Type == EntitySale {
			saleRes = &summary.Types[i]
		}
	}
	require.NotNil(t, saleRes)
	assert.Zero(t, saleRes.Archived)
	assert.Contains(t, saleRes.Error, "deadlock")
	for _, r := range src.records {
		assert.False(t, r.archived, "failed batch must leave no record archived")
	}
}

func TestArchiverSecondTypeSurvivesFirstTypeFailure(t *testing.T) {
	ps := testPolicies(t)
	failing := newStubSource(EntityCustomer)
	failing.add(yearsAgo(8))
	failing.failCommit = true

	healthy := newStubSource(EntitySale)
	healthy.add(yearsAgo(8))

	a := NewArchiver(ps, []Source{failing, healthy}, ArchiverConfig{BatchSize: 10})
	summary, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalArchived, "types are independent: a failure abandons that type only")
}

func TestArchiverBatchingRespectsBatchSize(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	for i := 0; i < 7; i++ {
		src.add(yearsAgo(7))
	}

	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 3})
	summary, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, summary.TotalArchived)
	require.Len(t, src.committed, 3) // 3 + 3 + 1
	assert.Len(t, src.committed[0], 3)
	assert.Len(t, src.committed[2], 1)
}

func TestArchiverCancellationBetweenBatches(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	for i := 0; i < 6; i++ {
		src.add(yearsAgo(7))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Cancel right after the first commit; the inter-batch pause observes it
	// so the second batch is never fetched.
	src.onCommit = cancel

	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 3, BatchPause: time.Millisecond})
	summary, err := a.Run(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, 3, summary.TotalArchived, "the committed batch survives cancellation")
}

func TestArchiverPurge(t *testing.T) {
	ps := testPolicies(t)
	src := newStubSource(EntitySale)
	a := NewArchiver(ps, []Source{src}, ArchiverConfig{BatchSize: 10})

	summary, err := a.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalRows)
	assert.WithinDuration(t, time.Now().AddDate(-10, 0, 0), summary.Cutoff, time.Minute)
}
