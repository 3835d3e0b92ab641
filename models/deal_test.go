package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionDeal(t *testing.T) {
	// The happy path moves strictly forward
	assert.True(t, CanTransitionDeal(DealStatusNew, DealStatusContacted))
	assert.True(t, CanTransitionDeal(DealStatusContacted, DealStatusQualified))
	assert.True(t, CanTransitionDeal(DealStatusQualified, DealStatusInProgress))
	assert.True(t, CanTransitionDeal(DealStatusInProgress, DealStatusClosedWon))
	assert.True(t, CanTransitionDeal(DealStatusInProgress, DealStatusClosedLost))

	// No skipping steps
	assert.False(t, CanTransitionDeal(DealStatusNew, DealStatusQualified))
	assert.False(t, CanTransitionDeal(DealStatusNew, DealStatusClosedWon))
	assert.False(t, CanTransitionDeal(DealStatusContacted, DealStatusInProgress))

	// No going backwards along the pipeline
	assert.False(t, CanTransitionDeal(DealStatusQualified, DealStatusContacted))
	assert.False(t, CanTransitionDeal(DealStatusContacted, DealStatusNew))
}

func TestReopenTransitions(t *testing.T) {
	// A closed deal reopens into IN_PROGRESS and nowhere else
	assert.True(t, CanTransitionDeal(DealStatusClosedWon, DealStatusInProgress))
	assert.True(t, CanTransitionDeal(DealStatusClosedLost, DealStatusInProgress))

	assert.False(t, CanTransitionDeal(DealStatusClosedWon, DealStatusNew))
	assert.False(t, CanTransitionDeal(DealStatusClosedWon, DealStatusQualified))
	assert.False(t, CanTransitionDeal(DealStatusClosedLost, DealStatusClosedWon))
}

func TestIsValidDealStatus(t *testing.T) {
	for _, s := range []string{
		DealStatusNew, DealStatusContacted, DealStatusQualified,
		DealStatusInProgress, DealStatusClosedWon, DealStatusClosedLost,
	} {
		assert.True(t, IsValidDealStatus(s), s)
	}
	assert.False(t, IsValidDealStatus("OPEN"))
	assert.False(t, IsValidDealStatus("closed_won"))
	assert.False(t, IsValidDealStatus(""))
}

func TestIsClosedDealStatus(t *testing.T) {
	assert.True(t, IsClosedDealStatus(DealStatusClosedWon))
	assert.True(t, IsClosedDealStatus(DealStatusClosedLost))
	assert.False(t, IsClosedDealStatus(DealStatusInProgress))
	assert.False(t, IsClosedDealStatus(DealStatusNew))
}

func TestNextDealStatuses(t *testing.T) {
	assert.Equal(t, []string{DealStatusContacted}, NextDealStatuses(DealStatusNew))
	assert.Equal(t, []string{DealStatusClosedWon, DealStatusClosedLost}, NextDealStatuses(DealStatusInProgress))
	assert.Equal(t, []string{DealStatusInProgress}, NextDealStatuses(DealStatusClosedWon))

	// The returned slice is a copy; mutating it must not corrupt the table
	next := NextDealStatuses(DealStatusNew)
	next[0] = "corrupted"
	assert.Equal(t, []string{DealStatusContacted}, NextDealStatuses(DealStatusNew))
}
