package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/profiradce/profiradce_backend/models"
)

// Cache keys for the deal pipeline. Closing a deal can spawn a commission,
// so the close path invalidates the commission views too.
const (
	cacheKeyDeals           = "deals"
	cacheKeyCommissions     = "commissions"
	cacheKeyCommissionStats = "commission-stats"
)

func dealCacheKey(dealID string) string { return "deal:" + dealID }

// Deals returns the specialist's deals, from cache when fresh.
func (c *Client) Deals() ([]models.Deal, error) {
	if cached, ok := c.cache.Get(cacheKeyDeals); ok {
		if deals, ok := cached.([]models.Deal); ok {
			return deals, nil
		}
	}

	var deals []models.Deal
	if err := c.get("/api/deals", &deals); err != nil {
		return nil, err
	}
	c.cache.Set(cacheKeyDeals, deals)
	return deals, nil
}

// Deal returns one deal with its event timeline, from cache when fresh.
func (c *Client) Deal(dealID string) (*models.DealDetail, error) {
	key := dealCacheKey(dealID)
	if cached, ok := c.cache.Get(key); ok {
		if detail, ok := cached.(*models.DealDetail); ok {
			return detail, nil
		}
	}

	var detail models.DealDetail
	if err := c.get("/api/deals/"+dealID, &detail); err != nil {
		return nil, err
	}
	c.cache.Set(key, &detail)
	return &detail, nil
}

// CreateDeal registers a new lead.
func (c *Client) CreateDeal(request models.CreateDealRequest) (*models.Deal, error) {
	var deal models.Deal
	if err := c.do(http.MethodPost, "/api/deals", request, &deal); err != nil {
		return nil, err
	}
	c.cache.Invalidate(cacheKeyDeals)
	return &deal, nil
}

// UpdateStatus moves a deal one step along the pipeline.
func (c *Client) UpdateStatus(dealID, status string) error {
	err := c.do(http.MethodPut, "/api/deals/"+dealID+"/status",
		models.UpdateDealStatusRequest{Status: status}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheKeyDeals, dealCacheKey(dealID))
	return nil
}

// SetValue records the qualified deal value and estimated close date. Both
// rules are checked here so an invalid form never reaches the network.
func (c *Client) SetValue(dealID string, dealValue float64, estimatedCloseDate time.Time) error {
	if dealValue <= 0 {
		return validationError("deal value must be positive")
	}
	if estimatedCloseDate.IsZero() {
		return validationError("estimated close date is required")
	}

	err := c.do(http.MethodPut, "/api/deals/"+dealID+"/value", models.SetDealValueRequest{
		DealValue:          dealValue,
		EstimatedCloseDate: estimatedCloseDate,
	}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheKeyDeals, dealCacheKey(dealID))
	return nil
}

// CloseDeal closes a deal as won or lost. A win requires a positive actual
// value, validated before dispatch; on success the commission views are
// invalidated alongside the deal views because a win spawns a commission.
func (c *Client) CloseDeal(dealID, status string, actualDealValue *float64) error {
	if status != models.DealStatusClosedWon && status != models.DealStatusClosedLost {
		return validationError(fmt.Sprintf("%q is not a closing status", status))
	}
	if status == models.DealStatusClosedWon && (actualDealValue == nil || *actualDealValue <= 0) {
		return validationError("a won deal needs a positive actual value")
	}

	err := c.do(http.MethodPut, "/api/deals/"+dealID+"/close", models.CloseDealRequest{
		Status:          status,
		ActualDealValue: actualDealValue,
	}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheKeyDeals, dealCacheKey(dealID), cacheKeyCommissions, cacheKeyCommissionStats)
	return nil
}

// ReopenDeal puts a closed deal back in progress.
func (c *Client) ReopenDeal(dealID string) error {
	if err := c.do(http.MethodPut, "/api/deals/"+dealID+"/reopen", nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(cacheKeyDeals, dealCacheKey(dealID))
	return nil
}

// AddNote appends a note optimistically: the cached detail view shows the
// note immediately under a temporary id, and a failed request restores the
// pre-mutation snapshot. Either way the entry is invalidated afterwards so
// the next read reconciles with the server.
func (c *Client) AddNote(dealID, content string) error {
	if strings.TrimSpace(content) == "" {
		return validationError("note content must not be empty")
	}

	key := dealCacheKey(dealID)
	snapshot := c.cache.Snapshot(key)

	// Placeholder id; the server's reconciling refetch replaces it
	tempID := primitive.NewObjectID()
	c.cache.OptimisticSet(key, func(current interface{}) interface{} {
		detail, ok := current.(*models.DealDetail)
		if !ok || detail == nil {
			return current
		}
		updated := *detail
		updated.Deal.Notes = append(append([]models.Note{}, detail.Deal.Notes...), models.Note{
			ID:        tempID,
			Content:   content,
			CreatedAt: time.Now(),
		})
		return &updated
	})

	err := c.do(http.MethodPost, "/api/deals/"+dealID+"/notes",
		models.AddNoteRequest{Content: content}, nil)
	if err != nil {
		c.cache.Restore(snapshot)
		c.cache.Invalidate(key)
		return err
	}

	c.cache.Invalidate(key, cacheKeyDeals)
	return nil
}
