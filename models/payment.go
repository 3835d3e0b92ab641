package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment intent statuses as reported by the provider
const (
	IntentStatusRequiresPayment = "requires_payment_method"
	IntentStatusProcessing      = "processing"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusFailed          = "failed"
)

// PaymentIntentRequest represents the intent-creation request sent to the
// payment provider. The amount is bound server-side; the client only ever
// sees the resulting client secret.
type PaymentIntentRequest struct {
	Amount         int64  `json:"amount"` // minor units
	Currency       string `json:"currency"`
	Description    string `json:"description,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	Metadata       struct {
		CommissionID string `json:"commissionId"`
	} `json:"metadata"`
}

// PaymentIntent represents the provider's view of an intent.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"` // "requires_payment_method", "processing", "succeeded", "failed"
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// PaymentRecord links a provider intent to a commission for confirmation.
type PaymentRecord struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CommissionID primitive.ObjectID `json:"commissionId" bson:"commissionId"`
	IntentID     string             `json:"intentId" bson:"intentId"`
	Amount       int64              `json:"amount" bson:"amount"`
	Currency     string             `json:"currency" bson:"currency"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PayCommissionResponse is returned when a payment intent is opened for a
// commission.
type PayCommissionResponse struct {
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// ConfirmPaymentRequest asks the backend to verify an intent with the
// provider and settle the commission.
type ConfirmPaymentRequest struct {
	IntentID string `json:"intentId" validate:"required"`
}
