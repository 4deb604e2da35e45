// Package offline reconciles stock movements submitted by disconnected
// clients against current server state. Each item of a batch is an
// independent all-or-nothing unit: a conflict or validation error on one item
// never blocks the rest of the batch.
package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"farmasys/internal/model"
	"farmasys/internal/retention"
)

// Outcome is the terminal classification of one submitted item.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeConflict Outcome = "CONFLICT"
	OutcomeError    Outcome = "ERROR"
)

// ErrProductNotFound is returned by the store when the submitted product id
// does not exist for the tenant.
var ErrProductNotFound = errors.New("produto nao encontrado")

// ValidationError marks a malformed item; the item is rejected and the batch
// continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("offline: campo %s invalido: %s", e.Field, e.Reason)
}

// BusinessConflict marks insufficient stock for an outflow; resolution is an
// external, client-driven action.
type BusinessConflict struct {
	Available int
	Requested int
}

func (e *BusinessConflict) Error() string {
	return fmt.Sprintf("offline: estoque insuficiente: disponivel %d, solicitado %d", e.Available, e.Requested)
}

// SubmittedMovement is one client-submitted stock movement.
type SubmittedMovement struct {
	ClientToken     string             `json:"client_token"`
	ProductID       uuid.UUID          `json:"product_id"`
	Type            model.MovementType `json:"type"`
	Quantity        int                `json:"quantity"`
	Reason          string             `json:"reason"`
	ClientTimestamp time.Time          `json:"client_timestamp"`
	// ClientHash is optional; when present it must match the server-side
	// recomputation over the submitted fields.
	ClientHash string `json:"client_hash,omitempty"`
}

// ItemResult is the outcome of one submitted item.
type ItemResult struct {
	ClientToken      string     `json:"client_token"`
	ProductID        uuid.UUID  `json:"product_id"`
	Outcome          Outcome    `json:"outcome"`
	Detail           string     `json:"detail,omitempty"`
	MovementID       *uuid.UUID `json:"movement_id,omitempty"`
	ResultingBalance *int       `json:"resulting_balance,omitempty"`
	Duplicate        bool       `json:"duplicate,omitempty"`
}

// BatchResult aggregates one reconciliation batch so the offline client can
// re-present only the failed or conflicting items.
type BatchResult struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Conflicts int          `json:"conflicts"`
	Errors    int          `json:"errors"`
	Items     []ItemResult `json:"items"`
}

// Store is the authoritative persistence collaborator. ApplyMovement must run
// fn while holding a write lock on the product row, and persist the movement
// fn returns (updating the product balance) in the same transaction; a nil
// movement records nothing.
type Store interface {
	FindByClientToken(ctx context.Context, tenantID uuid.UUID, token string) (*model.StockMovement, error)
	ApplyMovement(ctx context.Context, tenantID, productID uuid.UUID, fn func(balance int) (*model.StockMovement, error)) error
}

// Reconciler applies offline batches sequentially, item by item.
type Reconciler struct {
	store  Store
	hasher retention.Hasher
	now    func() time.Time
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// ProcessBatch reconciles the ordered batch for one tenant. It never returns
// an item-level failure as its own error: item failures are classified into
// the result, and processing always reaches the end of the batch.
func (r *Reconciler) ProcessBatch(ctx context.Context, tenantID, userID uuid.UUID, items []SubmittedMovement) (*BatchResult, error) {
	result := &BatchResult{Items: make([]ItemResult, 0, len(items))}

	for i := range items {
		item := r.processItem(ctx, tenantID, userID, &items[i])
		result.Items = append(result.Items, item)
		result.Processed++
		switch item.Outcome {
		case OutcomeSuccess:
			result.Succeeded++
		case OutcomeConflict:
			result.Conflicts++
		case OutcomeError:
			result.Errors++
		}
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Int("processed", result.Processed).
		Int("succeeded", result.Succeeded).
		Int("conflicts", result.Conflicts).
		Int("errors", result.Errors).
		Msg("offline sync batch reconciled")
	return result, nil
}

func (r *Reconciler) processItem(ctx context.Context, tenantID, userID uuid.UUID, sub *SubmittedMovement) ItemResult {
	res := ItemResult{ClientToken: sub.ClientToken, ProductID: sub.ProductID}

	if err := r.validate(sub); err != nil {
		res.Outcome = OutcomeError
		res.Detail = err.Error()
		return res
	}

	// Idempotency: a token already on record means a retry after a dropped
	// response — acknowledge without re-applying.
	if prev, err := r.store.FindByClientToken(ctx, tenantID, sub.ClientToken); err == nil && prev != nil {
		res.Outcome = OutcomeSuccess
		res.Duplicate = true
		res.MovementID = &prev.ID
		res.ResultingBalance = &prev.ResultingBalance
		res.Detail = "movimento ja sincronizado"
		return res
	}

	err := r.store.ApplyMovement(ctx, tenantID, sub.ProductID, func(balance int) (*model.StockMovement, error) {
		impact := sub.Type.SignedImpact(sub.Quantity)
		resulting := balance + impact
		if sub.Type.IsOutflow() && resulting < 0 {
			return nil, &BusinessConflict{Available: balance, Requested: sub.Quantity}
		}

		m := &model.StockMovement{
			ID:               uuid.New(),
			TenantID:         tenantID,
			ProductID:        sub.ProductID,
			UserID:           userID,
			Type:             sub.Type,
			Quantity:         sub.Quantity,
			PreviousBalance:  balance,
			ResultingBalance: resulting,
			Reason:           sub.Reason,
			ClientToken:      &sub.ClientToken,
			SyncStatus:       model.SyncSynced,
		}
		ts := sub.ClientTimestamp
		m.ClientTimestamp = &ts

		hash, err := r.hasher.Sum(retention.CurrentSchemaVersion,
			retention.MovementLedgerFields(m.ID, tenantID, sub.ProductID, sub.Type, sub.Quantity, balance, resulting))
		if err != nil {
			return nil, err
		}
		m.IntegrityHash = hash
		res.MovementID = &m.ID
		res.ResultingBalance = &resulting
		return m, nil
	})

	switch {
	case err == nil:
		res.Outcome = OutcomeSuccess
	case isConflict(err):
		res.Outcome = OutcomeConflict
		res.Detail = err.Error()
		res.MovementID = nil
		res.ResultingBalance = nil
	default:
		res.Outcome = OutcomeError
		res.Detail = err.Error()
		res.MovementID = nil
		res.ResultingBalance = nil
	}
	return res
}

// validate applies the item-level rules: required fields, positive quantity,
// known type, and the optional client hash.
func (r *Reconciler) validate(sub *SubmittedMovement) error {
	if sub.ClientToken == "" {
		return &ValidationError{Field: "client_token", Reason: "obrigatorio"}
	}
	if sub.ProductID == uuid.Nil {
		return &ValidationError{Field: "product_id", Reason: "obrigatorio"}
	}
	if !sub.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "tipo de movimento desconhecido"}
	}
	if sub.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "deve ser positiva"}
	}
	if sub.Reason == "" {
		return &ValidationError{Field: "reason", Reason: "obrigatorio"}
	}
	if sub.ClientHash != "" {
		expected, err := r.hasher.Sum(retention.CurrentSchemaVersion,
			retention.MovementSubmissionFields(sub.ProductID, sub.Type, sub.Quantity, sub.Reason, sub.ClientTimestamp))
		if err != nil {
			return err
		}
		if expected != sub.ClientHash {
			return &ValidationError{Field: "client_hash", Reason: "hash divergente do conteudo enviado"}
		}
	}
	return nil
}

func isConflict(err error) bool {
	var bc *BusinessConflict
	return errors.As(err, &bc)
}
