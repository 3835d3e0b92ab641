package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validContactRequest() ContactRequest {
	return ContactRequest{
		Name:    "Jana Nováková",
		Email:   "jana@example.cz",
		Subject: "Dotaz na provizi",
		Message: "Dobrý den, mám dotaz ohledně provizního řádu.",
	}
}

func TestContactRequestValidate(t *testing.T) {
	r := validContactRequest()
	assert.Empty(t, r.Validate())
}

func TestContactRequestValidateName(t *testing.T) {
	r := validContactRequest()
	r.Name = "J"
	assert.Equal(t, MsgContactNameTooShort, r.Validate())

	// Whitespace does not count toward the minimum
	r.Name = "  J  "
	assert.Equal(t, MsgContactNameTooShort, r.Validate())

	// Two runes with diacritics are enough
	r.Name = "Ží"
	assert.Empty(t, r.Validate())
}

func TestContactRequestValidateEmail(t *testing.T) {
	r := validContactRequest()
	for _, email := range []string{"", "jana", "jana@", "@example.cz", "jana@example", "jana@x.", "jana@.cz"} {
		r.Email = email
		assert.Equal(t, MsgContactInvalidEmail, r.Validate(), email)
	}
}

func TestContactRequestValidateSubjectAndMessage(t *testing.T) {
	r := validContactRequest()
	r.Subject = "ab"
	assert.Equal(t, MsgContactSubjectTooShort, r.Validate())

	r = validContactRequest()
	r.Message = "krátká"
	assert.Equal(t, MsgContactMessageTooShort, r.Validate())
}

func TestContactRequestValidateOrder(t *testing.T) {
	// Multiple violations report the first rule in form order
	r := ContactRequest{Name: "J", Email: "bad", Subject: "x", Message: "y"}
	assert.Equal(t, MsgContactNameTooShort, r.Validate())
}
