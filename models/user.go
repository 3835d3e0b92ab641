// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model. Specialists additionally own a Specialist profile document
// referenced by SpecialistID.
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string              `json:"email" bson:"email"`
	Password       string              `json:"password,omitempty" bson:"password"`
	FullName       string              `json:"fullName" bson:"fullName"`
	UserType       string              `json:"userType" bson:"userType"` // "customer", "specialist", "admin"
	IsActive       bool                `json:"isActive" bson:"isActive"`
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	SpecialistID   *primitive.ObjectID `json:"specialistId,omitempty" bson:"specialistId,omitempty"`
	LastActivityAt time.Time           `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Response is the standard API envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginRequest model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest model
type SignupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"fullName" validate:"required,min=2"`
	UserType   string `json:"userType" validate:"required,oneof=customer specialist"`
	Phone      string `json:"phone"`
	Profession string `json:"profession"` // required when userType is "specialist"
	Region     string `json:"region"`
	City       string `json:"city"`
}

// LoginResponse model
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

// RefreshRequest model
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
