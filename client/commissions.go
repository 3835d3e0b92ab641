package client

import (
	"net/http"

	"github.com/profiradce/profiradce_backend/models"
)

// Commissions returns the specialist's commissions, from cache when fresh.
func (c *Client) Commissions() ([]models.Commission, error) {
	if cached, ok := c.cache.Get(cacheKeyCommissions); ok {
		if commissions, ok := cached.([]models.Commission); ok {
			return commissions, nil
		}
	}

	var commissions []models.Commission
	if err := c.get("/api/commissions", &commissions); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKeyCommissions, commissions)
	return commissions, nil
}

// CommissionStats returns the dashboard aggregates, from cache when fresh.
func (c *Client) CommissionStats() (*models.CommissionStats, error) {
	if cached, ok := c.cache.Get(cacheKeyCommissionStats); ok {
		if stats, ok := cached.(*models.CommissionStats); ok {
			return stats, nil
		}
	}

	var stats models.CommissionStats
	if err := c.get("/api/commissions/stats", &stats); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKeyCommissionStats, &stats)
	return &stats, nil
}

// PayCommission opens a payment intent for a pending commission and returns
// the client secret the payment form confirms against.
func (c *Client) PayCommission(commissionID string) (*models.PayCommissionResponse, error) {
	var result models.PayCommissionResponse
	err := c.do(http.MethodPost, "/api/commissions/"+commissionID+"/pay", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmPayment reports a provider-confirmed intent back to the server,
// which verifies it independently before settling the commission.
func (c *Client) ConfirmPayment(intentID string) error {
	err := c.do(http.MethodPost, "/api/payments/confirm",
		models.ConfirmPaymentRequest{IntentID: intentID}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheKeyCommissions, cacheKeyCommissionStats)
	return nil
}
