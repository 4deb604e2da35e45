package dto

import "time"

// SyncMovementRequest is one stock movement recorded offline at the counter.
// ClientToken is generated by the device and makes resubmission idempotent.
// Item fields carry no validate tags on purpose: a malformed item must come
// back as an item-level ERROR outcome from the reconciler, not reject the
// whole batch.
type SyncMovementRequest struct {
	ClientToken     string    `json:"client_token"`
	ProductID       string    `json:"product_id"`
	MovementType    string    `json:"movement_type"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason"`
	ClientTimestamp time.Time `json:"client_timestamp"`
	ClientHash      string    `json:"client_hash"`
}

// SyncBatchRequest carries the queued movements of one device in submission
// order. The response body is the reconciliation result itself
// (offline.BatchResult), one entry per submitted item.
type SyncBatchRequest struct {
	Movements []SyncMovementRequest `json:"movements" validate:"required,min=1,max=500"`
}
