package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Specialist professions
const (
	ProfessionRealEstateAgent  = "real-estate-agent"
	ProfessionFinancialAdvisor = "financial-advisor"
)

// IsValidProfession reports whether the profession is one the directory
// knows.
func IsValidProfession(profession string) bool {
	switch profession {
	case ProfessionRealEstateAgent, ProfessionFinancialAdvisor:
		return true
	}
	return false
}

// Specialist is the public directory profile of a verified professional.
type Specialist struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	FullName    string             `json:"fullName" bson:"fullName"`
	Profession  string             `json:"profession" bson:"profession"` // "real-estate-agent", "financial-advisor"
	Region      string             `json:"region" bson:"region"`
	City        string             `json:"city" bson:"city"`
	Bio         string             `json:"bio,omitempty" bson:"bio,omitempty"`
	PhotoPath   string             `json:"photoPath,omitempty" bson:"photoPath,omitempty"`
	IsVerified  bool               `json:"isVerified" bson:"isVerified"`
	Rating      float64            `json:"rating" bson:"rating"`
	ReviewCount int                `json:"reviewCount" bson:"reviewCount"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SpecialistFilter collects the directory search parameters.
type SpecialistFilter struct {
	Profession string `query:"profession"`
	Region     string `query:"region"`
	City       string `query:"city"`
	Search     string `query:"q"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
}

// UpdateSpecialistRequest model for profile edits
type UpdateSpecialistRequest struct {
	FullName string `json:"fullName,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
}

// SpecialistResponse model
type SpecialistResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    *Specialist `json:"data,omitempty"`
}

// SpecialistsResponse model for directory listings
type SpecialistsResponse struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Data    []Specialist `json:"data,omitempty"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
}
