package client

// FormState is the payment form's lifecycle state.
type FormState string

const (
	FormStateCardIncomplete FormState = "card-incomplete"
	FormStateCardComplete   FormState = "card-complete"
	FormStateSubmitting     FormState = "submitting"
	FormStateSucceeded      FormState = "succeeded"
	FormStateFailed         FormState = "failed"
)

// Confirmer is the payment provider's client library: it confirms a client
// secret with the payment method it collected. Raw card data never passes
// through this SDK.
type Confirmer interface {
	ConfirmPayment(clientSecret string) error
}

// PaymentForm orchestrates confirming a server-created payment intent. It
// mirrors the embedded card widget's readiness and gates submission on it.
type PaymentForm struct {
	state        FormState
	confirmer    Confirmer
	clientSecret string

	onSuccess func()
	onError   func(error)

	successFired bool
}

// NewPaymentForm creates a form for the given client secret. The confirmer
// may be nil while the provider script is still loading; submission is a
// no-op until it arrives.
func NewPaymentForm(confirmer Confirmer, clientSecret string, onSuccess func(), onError func(error)) *PaymentForm {
	return &PaymentForm{
		state:        FormStateCardIncomplete,
		confirmer:    confirmer,
		clientSecret: clientSecret,
		onSuccess:    onSuccess,
		onError:      onError,
	}
}

// State returns the current form state.
func (f *PaymentForm) State() FormState { return f.state }

// SetConfirmer attaches the provider library once its script has loaded.
func (f *PaymentForm) SetConfirmer(confirmer Confirmer) { f.confirmer = confirmer }

// SetCardComplete tracks the card widget's completion events. It only moves
// between the two pre-submit states; submission and terminal states are
// unaffected.
func (f *PaymentForm) SetCardComplete(complete bool) {
	switch f.state {
	case FormStateCardIncomplete:
		if complete {
			f.state = FormStateCardComplete
		}
	case FormStateCardComplete, FormStateFailed:
		if complete {
			f.state = FormStateCardComplete
		} else {
			f.state = FormStateCardIncomplete
		}
	}
}

// CanSubmit reports whether the submit control should be enabled.
func (f *PaymentForm) CanSubmit() bool {
	return f.confirmer != nil && (f.state == FormStateCardComplete || f.state == FormStateFailed)
}

// Submit confirms the intent with the provider. It is a no-op unless the
// card is complete and the provider library is ready. A provider error
// leaves the commission pending and the form resubmittable; there is no
// automatic retry. The success callback fires at most once.
func (f *PaymentForm) Submit() {
	if !f.CanSubmit() {
		return
	}

	f.state = FormStateSubmitting
	if err := f.confirmer.ConfirmPayment(f.clientSecret); err != nil {
		f.state = FormStateFailed
		if f.onError != nil {
			f.onError(err)
		}
		return
	}

	f.state = FormStateSucceeded
	if !f.successFired {
		f.successFired = true
		if f.onSuccess != nil {
			f.onSuccess()
		}
	}
}
