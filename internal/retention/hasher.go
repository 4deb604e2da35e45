package retention

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"farmasys/internal/model"
)

// CurrentSchemaVersion is stamped on every new archive row and offline
// movement hash. Older versions remain verifiable through the version
// registry below, so historical archives survive canonicalization changes.
const CurrentSchemaVersion = 1

// Field is one named critical value in its canonical string form.
type Field struct {
	Name  string
	Value string
}

// Canonical value helpers. Timestamps are always UTC RFC3339 and monetary
// values are fixed to two decimal places — both sides of a round-trip must
// produce byte-identical input to the digest.
func timeValue(t time.Time) string          { return t.UTC().Format(time.RFC3339) }
func decimalValue(d decimal.Decimal) string { return d.StringFixed(2) }
func intValue(i int) string                 { return strconv.Itoa(i) }
func int64Value(i int64) string             { return strconv.FormatInt(i, 10) }
func boolValue(b bool) string               { return strconv.FormatBool(b) }

// Hasher computes deterministic digests over canonical serializations.
type Hasher struct{}

// Sum digests fields under the canonicalization rules of the given schema
// version. v1: "v1|name=value|name=value|…" through SHA-256, hex-encoded.
func (Hasher) Sum(version int, fields []Field) (string, error) {
	switch version {
	case 1:
		var b strings.Builder
		b.WriteString("v1")
		for _, f := range fields {
			b.WriteByte('|')
			b.WriteString(f.Name)
			b.WriteByte('=')
			b.WriteString(f.Value)
		}
		sum := sha256.Sum256([]byte(b.String()))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("retention: versao de esquema desconhecida: %d", version)
	}
}

// ── Per-type canonical field builders ────────────────────────────────────────
// One builder per archivable type, shared by the batch processor (hashing the
// live record) and the auditor (re-hashing the archived columns). Field order
// is part of the format and must never change within a schema version.

func SaleFields(originalID, tenantID uuid.UUID, number int64, total decimal.Decimal, itemCount int, hasControlled bool, deletedAt time.Time) []Field {
	return []Field{
		{"original_id", originalID.String()},
		{"tenant_id", tenantID.String()},
		{"sale_number", int64Value(number)},
		{"total_value", decimalValue(total)},
		{"item_count", intValue(itemCount)},
		{"has_controlled", boolValue(hasControlled)},
		{"deleted_at", timeValue(deletedAt)},
	}
}

func StockMovementArchiveFields(originalID, tenantID, productID uuid.UUID, movType model.MovementType, quantity, resulting int, deletedAt time.Time) []Field {
	return []Field{
		{"original_id", originalID.String()},
		{"tenant_id", tenantID.String()},
		{"product_id", productID.String()},
		{"movement_type", string(movType)},
		{"quantity", intValue(quantity)},
		{"resulting_balance", intValue(resulting)},
		{"deleted_at", timeValue(deletedAt)},
	}
}

func CustomerFields(originalID, tenantID uuid.UUID, document, fullName string, deletedAt time.Time) []Field {
	return []Field{
		{"original_id", originalID.String()},
		{"tenant_id", tenantID.String()},
		{"document", document},
		{"full_name", fullName},
		{"deleted_at", timeValue(deletedAt)},
	}
}

func SupplierFields(originalID, tenantID uuid.UUID, taxID, legalName string, deletedAt time.Time) []Field {
	return []Field{
		{"original_id", originalID.String()},
		{"tenant_id", tenantID.String()},
		{"tax_id", taxID},
		{"legal_name", legalName},
		{"deleted_at", timeValue(deletedAt)},
	}
}

// MovementSubmissionFields canonicalizes the client-visible fields of an
// offline stock movement. Offline clients compute this same digest before
// submission; the reconciler recomputes it server-side to detect corruption
// in transit.
func MovementSubmissionFields(productID uuid.UUID, movType model.MovementType, quantity int, reason string, clientTS time.Time) []Field {
	return []Field{
		{"product_id", productID.String()},
		{"movement_type", string(movType)},
		{"quantity", intValue(quantity)},
		{"reason", reason},
		{"client_timestamp", timeValue(clientTS)},
	}
}

// MovementLedgerFields canonicalizes a persisted stock-ledger entry, balances
// included. The resulting digest is stored on the movement row.
func MovementLedgerFields(id, tenantID, productID uuid.UUID, movType model.MovementType, quantity, previous, resulting int) []Field {
	return []Field{
		{"id", id.String()},
		{"tenant_id", tenantID.String()},
		{"product_id", productID.String()},
		{"movement_type", string(movType)},
		{"quantity", intValue(quantity)},
		{"previous_balance", intValue(previous)},
		{"resulting_balance", intValue(resulting)},
	}
}
