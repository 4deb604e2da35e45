package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedImpact(t *testing.T) {
	cases := []struct {
		typ    MovementType
		impact int
	}{
		{MovementIn, 5},
		{MovementAdjust, 5},
		{MovementOut, -5},
		{MovementLoss, -5},
		{MovementExpiry, -5},
		{MovementTransfer, -5},
		{MovementCount, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.impact, tc.typ.SignedImpact(5), "type %s", tc.typ)
	}
}

func TestIsOutflow(t *testing.T) {
	for _, typ := range []MovementType{MovementOut, MovementLoss, MovementExpiry, MovementTransfer} {
		assert.True(t, typ.IsOutflow(), "type %s", typ)
	}
	for _, typ := range []MovementType{MovementIn, MovementAdjust, MovementCount} {
		assert.False(t, typ.IsOutflow(), "type %s", typ)
	}
}

func TestMovementTypeValid(t *testing.T) {
	assert.True(t, MovementCount.Valid())
	assert.False(t, MovementType("TELEPORT").Valid())
	assert.False(t, MovementType("").Valid())
}
