package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deal statuses
const (
	DealStatusNew        = "NEW"
	DealStatusContacted  = "CONTACTED"
	DealStatusQualified  = "QUALIFIED"
	DealStatusInProgress = "IN_PROGRESS"
	DealStatusClosedWon  = "CLOSED_WON"
	DealStatusClosedLost = "CLOSED_LOST"
)

// DealEvent types
const (
	DealEventCreated      = "created"
	DealEventStatusChange = "status-change"
	DealEventValueChange  = "value-change"
	DealEventNoteAdded    = "note-added"
	DealEventEmailSent    = "email-sent"
)

// Deal model. Deals are never physically deleted; closed deals keep a
// terminal status and stay visible to the owning specialist.
type Deal struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SpecialistID       primitive.ObjectID `json:"specialistId" bson:"specialistId"`
	CustomerName       string             `json:"customerName" bson:"customerName"`
	CustomerEmail      string             `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone      string             `json:"customerPhone" bson:"customerPhone"`
	Message            string             `json:"message,omitempty" bson:"message,omitempty"`
	Status             string             `json:"status" bson:"status"` // "NEW", "CONTACTED", "QUALIFIED", "IN_PROGRESS", "CLOSED_WON", "CLOSED_LOST"
	DealValue          *float64           `json:"dealValue,omitempty" bson:"dealValue,omitempty"`
	EstimatedCloseDate *time.Time         `json:"estimatedCloseDate,omitempty" bson:"estimatedCloseDate,omitempty"`
	ActualCloseDate    *time.Time         `json:"actualCloseDate,omitempty" bson:"actualCloseDate,omitempty"`
	Notes              []Note             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Note is appended to its deal and visible only to the owning specialist.
type Note struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Author    string             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// DealEvent is the append-only audit log of a deal, ordered oldest first.
type DealEvent struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DealID      primitive.ObjectID `json:"dealId" bson:"dealId"`
	Type        string             `json:"type" bson:"type"` // "created", "status-change", "value-change", "note-added", "email-sent"
	Description string             `json:"description" bson:"description"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// dealTransitions lists the legal forward transitions plus the reopen edges.
var dealTransitions = map[string][]string{
	DealStatusNew:        {DealStatusContacted},
	DealStatusContacted:  {DealStatusQualified},
	DealStatusQualified:  {DealStatusInProgress},
	DealStatusInProgress: {DealStatusClosedWon, DealStatusClosedLost},
	DealStatusClosedWon:  {DealStatusInProgress},
	DealStatusClosedLost: {DealStatusInProgress},
}

// IsValidDealStatus reports whether s is one of the deal status values.
func IsValidDealStatus(s string) bool {
	_, ok := dealTransitions[s]
	return ok
}

// CanTransitionDeal reports whether a deal may move from one status to another.
func CanTransitionDeal(from, to string) bool {
	for _, next := range dealTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextDealStatuses returns the legal next statuses for a deal in the given
// status, in presentation order.
func NextDealStatuses(from string) []string {
	next := dealTransitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsClosedDealStatus reports whether s is a terminal deal status.
func IsClosedDealStatus(s string) bool {
	return s == DealStatusClosedWon || s == DealStatusClosedLost
}

// CreateDealRequest is the lead-intake payload.
type CreateDealRequest struct {
	SpecialistID  string `json:"specialistId" validate:"required"`
	CustomerName  string `json:"customerName" validate:"required,min=2"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone"`
	Message       string `json:"message"`
}

// UpdateDealStatusRequest model for moving a deal along the pipeline
type UpdateDealStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetDealValueRequest model for the qualify step; both fields are required
// together.
type SetDealValueRequest struct {
	DealValue          float64   `json:"dealValue" validate:"required,gt=0"`
	EstimatedCloseDate time.Time `json:"estimatedCloseDate" validate:"required"`
}

// CloseDealRequest model. ActualDealValue is required for CLOSED_WON and
// ignored for CLOSED_LOST.
type CloseDealRequest struct {
	Status          string   `json:"status" validate:"required"`
	ActualDealValue *float64 `json:"actualDealValue,omitempty"`
}

// AddNoteRequest model for appending a note to a deal
type AddNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// DealResponse model
type DealResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    *Deal  `json:"data,omitempty"`
}

// DealsResponse model for multiple deals
type DealsResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    []Deal `json:"data,omitempty"`
}

// DealDetail bundles a deal with its event timeline for the detail view.
type DealDetail struct {
	Deal   Deal        `json:"deal"`
	Events []DealEvent `json:"events"`
}
