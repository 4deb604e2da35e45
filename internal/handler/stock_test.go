package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farmasys/internal/middleware"
	"farmasys/internal/model"
	"farmasys/internal/offline"
	"farmasys/internal/repository"
	"farmasys/internal/service"
)

// stubMovementRepo is an in-memory StockMovementRepository: one balance per
// product, movements indexed by client token.
type stubMovementRepo struct {
	balances  map[uuid.UUID]int
	byToken   map[string]*model.StockMovement
	movements []model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo {
	return &stubMovementRepo{
		balances: make(map[uuid.UUID]int),
		byToken:  make(map[string]*model.StockMovement),
	}
}

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) FindByClientToken(_ context.Context, _ uuid.UUID, token string) (*model.StockMovement, error) {
	return r.byToken[token], nil
}

func (r *stubMovementRepo) ApplyMovement(_ context.Context, _ uuid.UUID, productID uuid.UUID, fn func(balance int) (*model.StockMovement, error)) error {
	balance, ok := r.balances[productID]
	if !ok {
		return offline.ErrProductNotFound
	}
	m, err := fn(balance)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	r.balances[productID] = m.ResultingBalance
	if m.ClientToken != nil {
		r.byToken[*m.ClientToken] = m
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, _ uuid.UUID, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func stockTestRouter(repo *stubMovementRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStockHandler(service.NewStockService(repo))
	r := gin.New()
	r.POST("/v1/stock/sync-batch", func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			TenantID: uuid.NewString(),
			UserID:   uuid.NewString(),
			Role:     "balconista",
		})
	}, h.SyncBatch)
	return r
}

func postSyncBatch(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/stock/sync-batch", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// A corrupt item in the device queue must come back as its own ERROR outcome
// while the rest of the batch still applies.
func TestSyncBatchMalformedItemDoesNotRejectBatch(t *testing.T) {
	repo := newStubMovementRepo()
	product := uuid.New()
	repo.balances[product] = 10
	r := stockTestRouter(repo)

	w := postSyncBatch(t, r, map[string]any{
		"movements": []map[string]any{
			{
				"client_token":     "tok-good",
				"product_id":       product.String(),
				"movement_type":    "OUT",
				"quantity":         2,
				"reason":           "venda offline",
				"client_timestamp": time.Now().UTC().Format(time.RFC3339),
			},
			{
				"client_token":     "tok-bad",
				"product_id":       product.String(),
				"movement_type":    "OUT",
				"quantity":         0, // malformed
				"reason":           "venda offline",
				"client_timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result offline.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 0, result.Conflicts)
	require.Len(t, result.Items, 2)
	assert.Equal(t, offline.OutcomeSuccess, result.Items[0].Outcome)
	assert.Equal(t, offline.OutcomeError, result.Items[1].Outcome)
	assert.Equal(t, 8, repo.balances[product])
}

// Unparseable product ids are item-level errors too, not a 4xx on the batch.
func TestSyncBatchBadProductIDIsItemError(t *testing.T) {
	repo := newStubMovementRepo()
	r := stockTestRouter(repo)

	w := postSyncBatch(t, r, map[string]any{
		"movements": []map[string]any{
			{
				"client_token":     "tok-ghost",
				"product_id":       "nao-e-uuid",
				"movement_type":    "IN",
				"quantity":         1,
				"reason":           "reposicao",
				"client_timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result offline.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, offline.OutcomeError, result.Items[0].Outcome)
}

// Structural rules still bind: an empty batch is a 422, not an empty result.
func TestSyncBatchStructuralValidation(t *testing.T) {
	r := stockTestRouter(newStubMovementRepo())

	w := postSyncBatch(t, r, map[string]any{"movements": []map[string]any{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	oversized := make([]map[string]any, 501)
	for i := range oversized {
		oversized[i] = map[string]any{"client_token": fmt.Sprintf("tok-%d", i)}
	}
	w = postSyncBatch(t, r, map[string]any{"movements": oversized})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
