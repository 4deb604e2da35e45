package model

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleState models the archival lifecycle of a business record as a
// single enum with forward-only transitions:
//
//	ACTIVE → SOFT_DELETED → ARCHIVED
//
// A record is never physically deleted from its live table; archival flags
// the row and copies it into the append-only archive store.
type LifecycleState string

const (
	LifecycleActive      LifecycleState = "ACTIVE"
	LifecycleSoftDeleted LifecycleState = "SOFT_DELETED"
	LifecycleArchived    LifecycleState = "ARCHIVED"
)

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Backward transitions are rejected unconditionally.
func (s LifecycleState) CanTransitionTo(next LifecycleState) bool {
	switch s {
	case LifecycleActive:
		return next == LifecycleSoftDeleted
	case LifecycleSoftDeleted:
		return next == LifecycleArchived
	default:
		return false
	}
}

// Lifecycle is embedded in every archivable model. DeletedAt and DeletedBy are
// set on soft delete; ArchivedAt is set when the archival job flags the row.
type Lifecycle struct {
	State      LifecycleState `gorm:"type:varchar(16);not null;default:'ACTIVE';index"`
	DeletedAt  *time.Time     `gorm:"index"`
	DeletedBy  *uuid.UUID     `gorm:"type:uuid"`
	ArchivedAt *time.Time
}

// SoftDelete transitions the record to SOFT_DELETED, recording who and when.
// Returns false if the record is not ACTIVE.
func (l *Lifecycle) SoftDelete(by uuid.UUID, at time.Time) bool {
	if !l.State.CanTransitionTo(LifecycleSoftDeleted) {
		return false
	}
	l.State = LifecycleSoftDeleted
	l.DeletedAt = &at
	l.DeletedBy = &by
	return true
}
