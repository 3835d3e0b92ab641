package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommissionIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	pastDue := Commission{Status: CommissionStatusPending, DueDate: now.AddDate(0, 0, -1)}
	assert.True(t, pastDue.IsOverdue(now))

	notYetDue := Commission{Status: CommissionStatusPending, DueDate: now.AddDate(0, 0, 1)}
	assert.False(t, notYetDue.IsOverdue(now))

	// Exactly at the due instant is not overdue
	atDue := Commission{Status: CommissionStatusPending, DueDate: now}
	assert.False(t, atDue.IsOverdue(now))

	// Only PENDING can be overdue, whatever the due date says
	for _, status := range []string{CommissionStatusInvoiced, CommissionStatusPaid, CommissionStatusWaived} {
		settled := Commission{Status: status, DueDate: now.AddDate(0, 0, -30)}
		assert.False(t, settled.IsOverdue(now), status)
	}
}

func TestCanTransitionCommission(t *testing.T) {
	assert.True(t, CanTransitionCommission(CommissionStatusPending, CommissionStatusInvoiced))
	assert.True(t, CanTransitionCommission(CommissionStatusPending, CommissionStatusPaid))
	assert.True(t, CanTransitionCommission(CommissionStatusPending, CommissionStatusWaived))
	assert.True(t, CanTransitionCommission(CommissionStatusInvoiced, CommissionStatusPaid))
	assert.True(t, CanTransitionCommission(CommissionStatusInvoiced, CommissionStatusWaived))

	// PAID and WAIVED are absorbing
	assert.False(t, CanTransitionCommission(CommissionStatusPaid, CommissionStatusPending))
	assert.False(t, CanTransitionCommission(CommissionStatusPaid, CommissionStatusWaived))
	assert.False(t, CanTransitionCommission(CommissionStatusWaived, CommissionStatusPending))
	assert.False(t, CanTransitionCommission(CommissionStatusWaived, CommissionStatusPaid))

	// No going backwards
	assert.False(t, CanTransitionCommission(CommissionStatusInvoiced, CommissionStatusPending))
}
