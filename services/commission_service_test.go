package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/profiradce/profiradce_backend/models"
)

func TestDeriveCommission(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	dealValue := 250000.0
	deal := &models.Deal{
		ID:           primitive.NewObjectID(),
		SpecialistID: primitive.NewObjectID(),
		Status:       models.DealStatusClosedWon,
		DealValue:    &dealValue,
	}

	commission := DeriveCommission(deal, 10, now)

	assert.Equal(t, deal.ID, commission.DealID)
	assert.Equal(t, deal.SpecialistID, commission.SpecialistID)
	assert.Equal(t, dealValue, commission.DealValue)
	assert.Equal(t, 10.0, commission.CommissionRate)
	assert.Equal(t, 25000.0, commission.CommissionAmount)
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
	assert.Equal(t, now, commission.CalculatedAt)
	assert.Equal(t, now.AddDate(0, 0, 30), commission.DueDate)
	assert.False(t, commission.ID.IsZero())
}

func TestDeriveCommissionFractionalRate(t *testing.T) {
	now := time.Now()
	dealValue := 100000.0
	deal := &models.Deal{
		ID:           primitive.NewObjectID(),
		SpecialistID: primitive.NewObjectID(),
		DealValue:    &dealValue,
	}

	commission := DeriveCommission(deal, 7.5, now)
	assert.InDelta(t, 7500.0, commission.CommissionAmount, 1e-9)
}

func TestDeriveCommissionNilValue(t *testing.T) {
	// Defensive: a won deal always carries a value, but a nil pointer must
	// not panic
	deal := &models.Deal{ID: primitive.NewObjectID(), SpecialistID: primitive.NewObjectID()}
	commission := DeriveCommission(deal, 10, time.Now())
	assert.Zero(t, commission.CommissionAmount)
	assert.Zero(t, commission.DealValue)
}

func TestCommissionRatePercent(t *testing.T) {
	t.Setenv("COMMISSION_RATE_PERCENT", "")
	assert.Equal(t, 10.0, CommissionRatePercent())

	t.Setenv("COMMISSION_RATE_PERCENT", "12.5")
	assert.Equal(t, 12.5, CommissionRatePercent())

	t.Setenv("COMMISSION_RATE_PERCENT", "not-a-number")
	assert.Equal(t, 10.0, CommissionRatePercent())

	t.Setenv("COMMISSION_RATE_PERCENT", "-5")
	assert.Equal(t, 10.0, CommissionRatePercent())
}

func TestDeriveCommissionAmountStability(t *testing.T) {
	// The amount is fixed at close time; re-deriving with a different rate
	// yields a different record, never a mutation of the first
	now := time.Now()
	dealValue := 50000.0
	deal := &models.Deal{
		ID:           primitive.NewObjectID(),
		SpecialistID: primitive.NewObjectID(),
		DealValue:    &dealValue,
	}

	first := DeriveCommission(deal, 10, now)
	second := DeriveCommission(deal, 20, now)

	require.Equal(t, 5000.0, first.CommissionAmount)
	require.Equal(t, 10000.0, second.CommissionAmount)
	assert.NotEqual(t, first.ID, second.ID)
}
