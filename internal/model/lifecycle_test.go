package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTransitionsAreForwardOnly(t *testing.T) {
	cases := []struct {
		from, to LifecycleState
		ok       bool
	}{
		{LifecycleActive, LifecycleSoftDeleted, true},
		{LifecycleSoftDeleted, LifecycleArchived, true},
		{LifecycleActive, LifecycleArchived, false},
		{LifecycleActive, LifecycleActive, false},
		{LifecycleSoftDeleted, LifecycleActive, false},
		{LifecycleSoftDeleted, LifecycleSoftDeleted, false},
		{LifecycleArchived, LifecycleActive, false},
		{LifecycleArchived, LifecycleSoftDeleted, false},
		{LifecycleArchived, LifecycleArchived, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSoftDeleteRecordsActor(t *testing.T) {
	by := uuid.New()
	at := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)

	l := Lifecycle{State: LifecycleActive}
	require.True(t, l.SoftDelete(by, at))
	assert.Equal(t, LifecycleSoftDeleted, l.State)
	require.NotNil(t, l.DeletedAt)
	assert.Equal(t, at, *l.DeletedAt)
	require.NotNil(t, l.DeletedBy)
	assert.Equal(t, by, *l.DeletedBy)
}

func TestSoftDeleteRejectsNonActive(t *testing.T) {
	for _, state := range []LifecycleState{LifecycleSoftDeleted, LifecycleArchived} {
		l := Lifecycle{State: state}
		assert.False(t, l.SoftDelete(uuid.New(), time.Now()), "state %s", state)
		assert.Equal(t, state, l.State)
		assert.Nil(t, l.DeletedAt)
	}
}
