package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/profiradce/profiradce_backend/models"
)

// PaymentService handles interactions with the card payment provider's API.
// The provider holds the whole PCI scope: this backend only ever creates and
// verifies payment intents, never touching card data.
type PaymentService struct {
	baseURL   string
	secretKey string
	isTesting bool
	client    *http.Client
}

// NewPaymentService creates a new payment service instance
func NewPaymentService() *PaymentService {
	paymentEnv := os.Getenv("PAYMENT_ENV")
	isTesting := paymentEnv == "testing"

	baseURL := os.Getenv("PAYMENT_API_URL")
	if baseURL == "" {
		baseURL = "https://api.payments.example.com/v1/"
	}

	secretKey := os.Getenv("PAYMENT_SECRET_KEY")
	if secretKey == "" {
		log.Printf("WARNING: PAYMENT_SECRET_KEY is not set; commission payments will fail")
	} else {
		log.Printf("Payment Service Configuration:")
		log.Printf("  Environment: %s", map[bool]string{true: "testing", false: "production"}[isTesting])
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  Secret Key: [CONFIGURED]")
	}

	return &PaymentService{
		baseURL:   baseURL,
		secretKey: secretKey,
		isTesting: isTesting,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// makeRequest performs an HTTP request to the provider API
func (s *PaymentService) makeRequest(method, endpoint string, payload interface{}, idempotencyKey string) (*models.PaymentIntent, error) {
	if s.secretKey == "" {
		return nil, fmt.Errorf("missing payment credentials. Please set PAYMENT_SECRET_KEY")
	}

	url := s.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	if s.isTesting || os.Getenv("PAYMENT_DEBUG") == "true" {
		log.Printf("Payment API Request: %s %s", method, url)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if s.isTesting || os.Getenv("PAYMENT_DEBUG") == "true" {
		log.Printf("Payment API Response: %s", string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var intent models.PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &intent, nil
}

// CreateIntent opens a payment intent for the given amount (minor units).
// The returned client secret is handed to the paying client; the amount
// stays bound to the intent server-side.
func (s *PaymentService) CreateIntent(amount int64, currency, commissionID, idempotencyKey string) (*models.PaymentIntent, error) {
	payload := models.PaymentIntentRequest{
		Amount:      amount,
		Currency:    currency,
		Description: "Commission payment " + commissionID,
	}
	payload.Metadata.CommissionID = commissionID

	return s.makeRequest("POST", "payment_intents", payload, idempotencyKey)
}

// GetIntent retrieves the provider's current view of an intent. Used to
// verify a client-reported confirmation before settling a commission.
func (s *PaymentService) GetIntent(intentID string) (*models.PaymentIntent, error) {
	return s.makeRequest("GET", "payment_intents/"+intentID, nil, "")
}
