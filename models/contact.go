package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact form validation messages, shown to Czech-speaking users.
const (
	MsgContactNameTooShort    = "Jméno musí mít alespoň 2 znaky"
	MsgContactInvalidEmail    = "Zadejte platnou e-mailovou adresu"
	MsgContactSubjectTooShort = "Předmět musí mít alespoň 3 znaky"
	MsgContactMessageTooShort = "Zpráva musí mít alespoň 10 znaků"
	MsgContactRateLimited     = "Příliš mnoho požadavků. Zkuste to prosím za minutu."
	MsgContactServerError     = "Něco se pokazilo. Zkuste to prosím později."
)

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the form rules in order and returns the first violated
// rule's message, or "" when the request is valid.
func (r *ContactRequest) Validate() string {
	if utf8.RuneCountInString(strings.TrimSpace(r.Name)) < 2 {
		return MsgContactNameTooShort
	}
	email := strings.TrimSpace(r.Email)
	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	if at < 1 || dot < at+2 || dot == len(email)-1 {
		return MsgContactInvalidEmail
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Subject)) < 3 {
		return MsgContactSubjectTooShort
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Message)) < 10 {
		return MsgContactMessageTooShort
	}
	return ""
}

// ContactSubmission is the stored copy of an accepted contact request.
type ContactSubmission struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Subject   string             `json:"subject" bson:"subject"`
	Message   string             `json:"message" bson:"message"`
	SourceIP  string             `json:"sourceIp" bson:"sourceIp"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ContactResponse is the public contact form result.
type ContactResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
