package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfirmer stands in for the payment provider's client library.
type fakeConfirmer struct {
	err     error
	calls   int
	secrets []string
}

func (f *fakeConfirmer) ConfirmPayment(clientSecret string) error {
	f.calls++
	f.secrets = append(f.secrets, clientSecret)
	return f.err
}

func TestPaymentFormGatedOnCardCompletion(t *testing.T) {
	confirmer := &fakeConfirmer{}
	form := NewPaymentForm(confirmer, "secret_123", nil, nil)

	assert.Equal(t, FormStateCardIncomplete, form.State())
	assert.False(t, form.CanSubmit())

	// Submitting with an incomplete card is a no-op
	form.Submit()
	assert.Equal(t, FormStateCardIncomplete, form.State())
	assert.Zero(t, confirmer.calls)

	form.SetCardComplete(true)
	assert.Equal(t, FormStateCardComplete, form.State())
	assert.True(t, form.CanSubmit())
}

func TestPaymentFormSuccessFiresCallbackOnce(t *testing.T) {
	confirmer := &fakeConfirmer{}
	successes := 0
	form := NewPaymentForm(confirmer, "secret_123", func() { successes++ }, nil)

	form.SetCardComplete(true)
	form.Submit()

	assert.Equal(t, FormStateSucceeded, form.State())
	assert.Equal(t, 1, successes)
	require.Equal(t, 1, confirmer.calls)
	assert.Equal(t, "secret_123", confirmer.secrets[0])

	// The terminal state swallows further submits; the callback never
	// fires twice
	form.Submit()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, confirmer.calls)
}

func TestPaymentFormProviderErrorAllowsResubmit(t *testing.T) {
	providerErr := errors.New("karta byla odmítnuta")
	confirmer := &fakeConfirmer{err: providerErr}

	var reported error
	successes := 0
	form := NewPaymentForm(confirmer, "secret_123", func() { successes++ }, func(err error) { reported = err })

	form.SetCardComplete(true)
	form.Submit()

	assert.Equal(t, FormStateFailed, form.State())
	assert.Equal(t, providerErr, reported)
	assert.Zero(t, successes)

	// No automatic retry happened
	assert.Equal(t, 1, confirmer.calls)

	// The user resubmits manually; this time the provider accepts
	confirmer.err = nil
	assert.True(t, form.CanSubmit())
	form.Submit()

	assert.Equal(t, FormStateSucceeded, form.State())
	assert.Equal(t, 1, successes)
	assert.Equal(t, 2, confirmer.calls)
}

func TestPaymentFormNoOpWithoutProvider(t *testing.T) {
	// Provider script not loaded yet: submission is a no-op, not an error
	form := NewPaymentForm(nil, "secret_123", nil, nil)
	form.SetCardComplete(true)

	assert.False(t, form.CanSubmit())
	form.Submit()
	assert.Equal(t, FormStateCardComplete, form.State())

	// Once the library arrives the same form becomes submittable
	confirmer := &fakeConfirmer{}
	form.SetConfirmer(confirmer)
	assert.True(t, form.CanSubmit())
	form.Submit()
	assert.Equal(t, FormStateSucceeded, form.State())
}

func TestPaymentFormCardToggle(t *testing.T) {
	form := NewPaymentForm(&fakeConfirmer{}, "secret_123", nil, nil)

	form.SetCardComplete(true)
	form.SetCardComplete(false)
	assert.Equal(t, FormStateCardIncomplete, form.State())
	assert.False(t, form.CanSubmit())

	form.SetCardComplete(true)
	assert.True(t, form.CanSubmit())
}
