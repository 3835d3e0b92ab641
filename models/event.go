package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RSVP statuses
const (
	RSVPStatusGoing     = "going"
	RSVPStatusCancelled = "cancelled"
)

// Event model for community meetups and workshops
type Event struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Venue       string             `json:"venue" bson:"venue"`
	City        string             `json:"city" bson:"city"`
	StartsAt    time.Time          `json:"startsAt" bson:"startsAt"`
	Capacity    int                `json:"capacity" bson:"capacity"`
	GoingCount  int                `json:"goingCount" bson:"goingCount"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RSVP model; one per user and event, enforced by a unique index.
type RSVP struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EventID   primitive.ObjectID `json:"eventId" bson:"eventId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Status    string             `json:"status" bson:"status"` // "going", "cancelled"
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateEventRequest model (admin)
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=3"`
	Description string    `json:"description"`
	Venue       string    `json:"venue" validate:"required"`
	City        string    `json:"city" validate:"required"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	Capacity    int       `json:"capacity" validate:"required,gt=0"`
}

// EventResponse model
type EventResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    *Event `json:"data,omitempty"`
}

// EventsResponse model for multiple events
type EventsResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    []Event `json:"data,omitempty"`
}

// RSVPResponse model
type RSVPResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    *RSVP  `json:"data,omitempty"`
}
