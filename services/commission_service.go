package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/profiradce/profiradce_backend/models"
)

const (
	defaultCommissionRatePercent = 10.0
	commissionDueDays            = 30
)

// CommissionRatePercent returns the platform commission rate. The rate is a
// policy knob set by operations, not by the closing specialist.
func CommissionRatePercent() float64 {
	if rateStr := os.Getenv("COMMISSION_RATE_PERCENT"); rateStr != "" {
		if rate, err := strconv.ParseFloat(rateStr, 64); err == nil && rate > 0 {
			return rate
		}
		log.Printf("Invalid COMMISSION_RATE_PERCENT %q, using default", rateStr)
	}
	return defaultCommissionRatePercent
}

// DeriveCommission builds the commission record for a deal that closed as
// won. The amount is fixed here and never recalculated, even if the deal is
// later reopened and closed again.
func DeriveCommission(deal *models.Deal, rate float64, now time.Time) models.Commission {
	var dealValue float64
	if deal.DealValue != nil {
		dealValue = *deal.DealValue
	}

	return models.Commission{
		ID:               primitive.NewObjectID(),
		DealID:           deal.ID,
		SpecialistID:     deal.SpecialistID,
		DealValue:        dealValue,
		CommissionRate:   rate,
		CommissionAmount: dealValue * rate / 100,
		Status:           models.CommissionStatusPending,
		CalculatedAt:     now,
		DueDate:          now.AddDate(0, 0, commissionDueDays),
	}
}
