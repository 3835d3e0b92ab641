package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commission statuses
const (
	CommissionStatusPending  = "PENDING"
	CommissionStatusInvoiced = "INVOICED"
	CommissionStatusPaid     = "PAID"
	CommissionStatusWaived   = "WAIVED"
)

// Commission is created exactly once when a deal closes as won. The amount is
// calculated at close time and never recalculated afterwards.
type Commission struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DealID           primitive.ObjectID `json:"dealId" bson:"dealId"`
	SpecialistID     primitive.ObjectID `json:"specialistId" bson:"specialistId"`
	DealValue        float64            `json:"dealValue" bson:"dealValue"`
	CommissionRate   float64            `json:"commissionRate" bson:"commissionRate"`
	CommissionAmount float64            `json:"commissionAmount" bson:"commissionAmount"`
	Status           string             `json:"status" bson:"status"` // "PENDING", "INVOICED", "PAID", "WAIVED"
	CalculatedAt     time.Time          `json:"calculatedAt" bson:"calculatedAt"`
	DueDate          time.Time          `json:"dueDate" bson:"dueDate"`
	InvoicedAt       *time.Time         `json:"invoicedAt,omitempty" bson:"invoicedAt,omitempty"`
	PaidAt           *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// IsOverdue reports whether the commission is overdue at the given instant.
// Only PENDING commissions can be overdue; INVOICED, PAID and WAIVED are
// never flagged regardless of due date.
func (c *Commission) IsOverdue(now time.Time) bool {
	return c.Status == CommissionStatusPending && now.After(c.DueDate)
}

// commissionTransitions: forward only, plus WAIVED reachable from PENDING and
// INVOICED. WAIVED and PAID are absorbing.
var commissionTransitions = map[string][]string{
	CommissionStatusPending:  {CommissionStatusInvoiced, CommissionStatusPaid, CommissionStatusWaived},
	CommissionStatusInvoiced: {CommissionStatusPaid, CommissionStatusWaived},
	CommissionStatusPaid:     {},
	CommissionStatusWaived:   {},
}

// CanTransitionCommission reports whether a commission may move between the
// two statuses.
func CanTransitionCommission(from, to string) bool {
	for _, next := range commissionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CommissionStats is the dashboard aggregate over a specialist's commissions.
type CommissionStats struct {
	TotalPending  float64 `json:"totalPending"`
	TotalInvoiced float64 `json:"totalInvoiced"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalWaived   float64 `json:"totalWaived"`
	OverdueCount  int     `json:"overdueCount"`
	Count         int     `json:"count"`
}

// CommissionResponse model
type CommissionResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    *Commission `json:"data,omitempty"`
}

// CommissionsResponse model for multiple commissions
type CommissionsResponse struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Data    []Commission `json:"data,omitempty"`
}

// CommissionStatsResponse model
type CommissionStatsResponse struct {
	Status  int              `json:"status"`
	Message string           `json:"message"`
	Data    *CommissionStats `json:"data,omitempty"`
}
