package offline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmasys/internal/model"
	"farmasys/internal/retention"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubStore is an in-memory offline.Store: one balance per product, movements
// indexed by client token.
type stubStore struct {
	balances map[uuid.UUID]int
	byToken  map[string]*model.StockMovement
	applied  []*model.StockMovement
}

func newStubStore() *stubStore {
	return &stubStore{
		balances: make(map[uuid.UUID]int),
		byToken:  make(map[string]*model.StockMovement),
	}
}

func (s *stubStore) FindByClientToken(_ context.Context, _ uuid.UUID, token string) (*model.StockMovement, error) {
	return s.byToken[token], nil
}

func (s *stubStore) ApplyMovement(_ context.Context, _ uuid.UUID, productID uuid.UUID, fn func(balance int) (*model.StockMovement, error)) error {
	balance, ok := s.balances[productID]
	if !ok {
		return ErrProductNotFound
	}
	m, err := fn(balance)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	s.balances[productID] = m.ResultingBalance
	if m.ClientToken != nil {
		s.byToken[*m.ClientToken] = m
	}
	s.applied = append(s.applied, m)
	return nil
}

var _ Store = (*stubStore)(nil)

func submitted(token string, productID uuid.UUID, typ model.MovementType, qty int) SubmittedMovement {
	return SubmittedMovement{
		ClientToken:     token,
		ProductID:       productID,
		Type:            typ,
		Quantity:        qty,
		Reason:          "contagem de balcao",
		ClientTimestamp: time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestProcessBatchOutflowConflict(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 10

	r := NewReconciler(store)
	result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{
		submitted("tok-1", product, model.MovementOut, 5),
		submitted("tok-2", product, model.MovementOut, 10), // only 5 left
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Conflicts)
	assert.Equal(t, 0, result.Errors)

	first := result.Items[0]
	assert.Equal(t, OutcomeSuccess, first.Outcome)
	require.NotNil(t, first.ResultingBalance)
	assert.Equal(t, 5, *first.ResultingBalance)

	second := result.Items[1]
	assert.Equal(t, OutcomeConflict, second.Outcome)
	assert.Nil(t, second.MovementID)
	assert.Contains(t, second.Detail, "estoque insuficiente")

	// The conflicting item changed nothing.
	assert.Equal(t, 5, store.balances[product])
	assert.Len(t, store.applied, 1)
}

func TestProcessBatchDuplicateTokenIsAcknowledged(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 10

	r := NewReconciler(store)
	batch := []SubmittedMovement{submitted("tok-dup", product, model.MovementOut, 3)}

	first, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), batch)
	require.NoError(t, err)
	require.Equal(t, 1, first.Succeeded)
	require.Equal(t, 7, store.balances[product])

	// Client lost the response and resubmits the same token.
	second, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), batch)
	require.NoError(t, err)

	item := second.Items[0]
	assert.Equal(t, OutcomeSuccess, item.Outcome)
	assert.True(t, item.Duplicate)
	require.NotNil(t, item.ResultingBalance)
	assert.Equal(t, 7, *item.ResultingBalance, "acknowledged with the original outcome")
	assert.Equal(t, 7, store.balances[product], "no double application")
	assert.Len(t, store.applied, 1)
}

func TestProcessBatchCountHasZeroImpactAndNeverConflicts(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 0

	r := NewReconciler(store)
	result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{
		submitted("tok-count", product, model.MovementCount, 50),
	})
	require.NoError(t, err)

	item := result.Items[0]
	assert.Equal(t, OutcomeSuccess, item.Outcome)
	assert.Equal(t, 0, store.balances[product], "count movements never move the balance")
	require.Len(t, store.applied, 1)
	assert.Equal(t, 0, store.applied[0].ResultingBalance)
	assert.Equal(t, model.MovementCount, store.applied[0].Type)
}

func TestProcessBatchValidation(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 10
	r := NewReconciler(store)

	cases := []struct {
		name string
		mut  func(*SubmittedMovement)
	}{
		{"missing token", func(m *SubmittedMovement) { m.ClientToken = "" }},
		{"missing product", func(m *SubmittedMovement) { m.ProductID = uuid.Nil }},
		{"unknown type", func(m *SubmittedMovement) { m.Type = "TELEPORT" }},
		{"zero quantity", func(m *SubmittedMovement) { m.Quantity = 0 }},
		{"negative quantity", func(m *SubmittedMovement) { m.Quantity = -2 }},
		{"missing reason", func(m *SubmittedMovement) { m.Reason = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := submitted("tok-"+tc.name, product, model.MovementIn, 1)
			tc.mut(&m)
			result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{m})
			require.NoError(t, err)
			assert.Equal(t, OutcomeError, result.Items[0].Outcome)
			assert.Equal(t, 1, result.Errors)
		})
	}
	assert.Equal(t, 10, store.balances[product], "rejected items never touch the balance")
}

func TestProcessBatchClientHashMismatch(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 10
	r := NewReconciler(store)

	m := submitted("tok-hash", product, model.MovementIn, 4)
	m.ClientHash = "deadbeef"
	result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{m})
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, result.Items[0].Outcome)
	assert.Contains(t, result.Items[0].Detail, "hash")
}

func TestProcessBatchClientHashAccepted(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 10
	r := NewReconciler(store)

	m := submitted("tok-hash-ok", product, model.MovementIn, 4)
	hash, err := retention.Hasher{}.Sum(retention.CurrentSchemaVersion,
		retention.MovementSubmissionFields(m.ProductID, m.Type, m.Quantity, m.Reason, m.ClientTimestamp))
	require.NoError(t, err)
	m.ClientHash = hash

	result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{m})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, result.Items[0].Outcome)
	assert.Equal(t, 14, store.balances[product])
}

func TestProcessBatchUnknownProductIsError(t *testing.T) {
	store := newStubStore()
	r := NewReconciler(store)

	result, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{
		submitted("tok-ghost", uuid.New(), model.MovementIn, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, result.Items[0].Outcome)
	assert.Equal(t, 1, result.Errors)
}

func TestProcessBatchMovementCarriesLedgerHash(t *testing.T) {
	store := newStubStore()
	product := uuid.New()
	store.balances[product] = 3
	r := NewReconciler(store)

	_, err := r.ProcessBatch(context.Background(), uuid.New(), uuid.New(), []SubmittedMovement{
		submitted("tok-ledger", product, model.MovementIn, 2),
	})
	require.NoError(t, err)
	require.Len(t, store.applied, 1)

	m := store.applied[0]
	expected, err := retention.Hasher{}.Sum(retention.CurrentSchemaVersion,
		retention.MovementLedgerFields(m.ID, m.TenantID, m.ProductID, m.Type, m.Quantity, m.PreviousBalance, m.ResultingBalance))
	require.NoError(t, err)
	assert.Equal(t, expected, m.IntegrityHash)
	assert.Equal(t, 3, m.PreviousBalance)
	assert.Equal(t, 5, m.ResultingBalance)
	assert.Equal(t, model.SyncSynced, m.SyncStatus)
}
