package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/repositories"
	"github.com/profiradce/profiradce_backend/services"
	"github.com/profiradce/profiradce_backend/utils"
	"github.com/profiradce/profiradce_backend/websocket"
)

// DealController handles the deal pipeline endpoints
type DealController struct {
	db   *mongo.Client
	repo *repositories.DealRepository
	hub  *websocket.Hub
}

// NewDealController creates a new deal controller
func NewDealController(db *mongo.Client, repo *repositories.DealRepository, hub *websocket.Hub) *DealController {
	return &DealController{db: db, repo: repo, hub: hub}
}

// specialistFromContext resolves the authenticated specialist and their
// profile id. Deals are only ever visible to their owning specialist.
func (dc *DealController) specialistFromContext(c echo.Context) (*models.User, primitive.ObjectID, error) {
	user, err := utils.GetUserFromToken(c, dc.db)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if user.UserType != "specialist" || user.SpecialistID == nil {
		return nil, primitive.NilObjectID, fmt.Errorf("not a specialist account")
	}
	return user, *user.SpecialistID, nil
}

// notifyInvalidation pushes a cache-invalidation notice to the specialist's
// dashboard sessions.
func (dc *DealController) notifyInvalidation(userID primitive.ObjectID, collections ...string) {
	if dc.hub != nil {
		dc.hub.NotifyInvalidation(userID, collections...)
	}
}

// CreateDeal handles lead intake: a customer inquiry becomes a NEW deal for
// the chosen specialist.
func (dc *DealController) CreateDeal(c echo.Context) error {
	var request models.CreateDealRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := c.Validate(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	specialistID, err := primitive.ObjectIDFromHex(request.SpecialistID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid specialist ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The specialist must exist and be verified before taking leads
	var specialist models.Specialist
	err = config.GetCollection(dc.db, "specialists").FindOne(ctx, bson.M{"_id": specialistID}).Decode(&specialist)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Specialist not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding specialist",
		})
	}

	email, err := utils.SanitizeEmail(request.CustomerEmail)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer email",
		})
	}
	phone, err := utils.SanitizePhone(request.CustomerPhone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer phone",
		})
	}

	now := time.Now()
	deal := models.Deal{
		ID:            primitive.NewObjectID(),
		SpecialistID:  specialistID,
		CustomerName:  utils.SanitizeInput(request.CustomerName),
		CustomerEmail: email,
		CustomerPhone: phone,
		Message:       utils.SanitizeInput(request.Message),
		Status:        models.DealStatusNew,
		Notes:         []models.Note{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := dc.repo.Insert(ctx, &deal); err != nil {
		log.Printf("Failed to create deal: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create deal",
		})
	}

	dc.notifyInvalidation(specialist.UserID, "deals")

	return c.JSON(http.StatusCreated, models.DealResponse{
		Status:  http.StatusCreated,
		Message: "Deal created successfully",
		Data:    &deal,
	})
}

// GetDeals lists the authenticated specialist's deals, newest first.
func (dc *DealController) GetDeals(c echo.Context) error {
	_, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deals, err := dc.repo.FindBySpecialist(ctx, specialistID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve deals",
		})
	}

	return c.JSON(http.StatusOK, models.DealsResponse{
		Status:  http.StatusOK,
		Message: "Deals retrieved successfully",
		Data:    deals,
	})
}

// GetDeal returns one deal with its event timeline.
func (dc *DealController) GetDeal(c echo.Context) error {
	_, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	events, err := dc.repo.EventsForDeal(ctx, deal.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve deal timeline",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Deal retrieved successfully",
		Data: models.DealDetail{
			Deal:   *deal,
			Events: events,
		},
	})
}

// ownedDeal loads the deal from the :id param and checks ownership. On
// failure it writes the error response and returns nil.
func (dc *DealController) ownedDeal(c echo.Context, ctx context.Context, specialistID primitive.ObjectID) (*models.Deal, error) {
	dealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid deal ID",
		})
	}

	deal, err := dc.repo.FindByID(ctx, dealID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Deal not found",
			})
		}
		return nil, c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding deal",
		})
	}

	if deal.SpecialistID != specialistID {
		// Don't leak existence of other specialists' deals
		return nil, c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Deal not found",
		})
	}

	return deal, nil
}

// UpdateDealStatus moves a deal along the forward chain or reopens it.
func (dc *DealController) UpdateDealStatus(c echo.Context) error {
	user, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.UpdateDealStatusRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	if !models.IsValidDealStatus(request.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown deal status: " + request.Status,
		})
	}

	// Closing carries extra rules; force callers through the close endpoint
	if models.IsClosedDealStatus(request.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Use the close endpoint to close a deal",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	if !models.CanTransitionDeal(deal.Status, request.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Illegal transition %s -> %s", deal.Status, request.Status),
		})
	}

	if err := dc.repo.Update(ctx, deal.ID, bson.M{"status": request.Status}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update deal status",
		})
	}

	description := fmt.Sprintf("Stav změněn: %s -> %s", deal.Status, request.Status)
	if err := dc.repo.AppendEvent(ctx, deal.ID, models.DealEventStatusChange, description); err != nil {
		log.Printf("Failed to append deal event: %v", err)
	}

	deal.Status = request.Status
	dc.notifyInvalidation(user.ID, "deals")

	return c.JSON(http.StatusOK, models.DealResponse{
		Status:  http.StatusOK,
		Message: "Deal status updated successfully",
		Data:    deal,
	})
}

// SetDealValue records the qualified value and estimated close date. Both
// fields travel together and the deal must still be open.
func (dc *DealController) SetDealValue(c echo.Context) error {
	user, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.SetDealValueRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if request.DealValue <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Deal value must be a positive number",
		})
	}
	if request.EstimatedCloseDate.IsZero() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Estimated close date is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	if models.IsClosedDealStatus(deal.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot set value on a closed deal",
		})
	}

	err = dc.repo.Update(ctx, deal.ID, bson.M{
		"dealValue":          request.DealValue,
		"estimatedCloseDate": request.EstimatedCloseDate,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update deal value",
		})
	}

	description := fmt.Sprintf("Hodnota obchodu nastavena na %.2f", request.DealValue)
	if err := dc.repo.AppendEvent(ctx, deal.ID, models.DealEventValueChange, description); err != nil {
		log.Printf("Failed to append deal event: %v", err)
	}

	deal.DealValue = &request.DealValue
	deal.EstimatedCloseDate = &request.EstimatedCloseDate
	dc.notifyInvalidation(user.ID, "deals")

	return c.JSON(http.StatusOK, models.DealResponse{
		Status:  http.StatusOK,
		Message: "Deal value updated successfully",
		Data:    deal,
	})
}

// CloseDeal closes a deal as won or lost. A won close requires a positive
// final value, which becomes the deal's dealValue and seeds exactly one
// commission.
func (dc *DealController) CloseDeal(c echo.Context) error {
	user, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.CloseDealRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	if !models.IsClosedDealStatus(request.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Close status must be CLOSED_WON or CLOSED_LOST",
		})
	}
	if request.Status == models.DealStatusClosedWon {
		if request.ActualDealValue == nil || *request.ActualDealValue <= 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "A positive actual deal value is required to close as won",
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	if !models.CanTransitionDeal(deal.Status, request.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Illegal transition %s -> %s", deal.Status, request.Status),
		})
	}

	now := time.Now()
	set := bson.M{
		"status":          request.Status,
		"actualCloseDate": now,
	}
	if request.Status == models.DealStatusClosedWon {
		set["dealValue"] = *request.ActualDealValue
	}

	if err := dc.repo.Update(ctx, deal.ID, set); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to close deal",
		})
	}

	description := fmt.Sprintf("Stav změněn: %s -> %s", deal.Status, request.Status)
	if err := dc.repo.AppendEvent(ctx, deal.ID, models.DealEventStatusChange, description); err != nil {
		log.Printf("Failed to append deal event: %v", err)
	}

	deal.Status = request.Status
	deal.ActualCloseDate = &now

	invalidated := []string{"deals"}

	if request.Status == models.DealStatusClosedWon {
		deal.DealValue = request.ActualDealValue

		commission := services.DeriveCommission(deal, services.CommissionRatePercent(), now)
		_, err = config.GetCollection(dc.db, "commissions").InsertOne(ctx, commission)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// A reopened deal closed again keeps its original commission.
				// Reconciliation of the old amount is an operations concern.
				log.Printf("Deal %s already has a commission, skipping", deal.ID.Hex())
			} else {
				log.Printf("Failed to create commission for deal %s: %v", deal.ID.Hex(), err)
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Deal closed but commission creation failed",
				})
			}
		}
		invalidated = append(invalidated, "commissions", "commission-stats")
	}

	dc.notifyInvalidation(user.ID, invalidated...)

	return c.JSON(http.StatusOK, models.DealResponse{
		Status:  http.StatusOK,
		Message: "Deal closed successfully",
		Data:    deal,
	})
}

// ReopenDeal returns a closed deal to IN_PROGRESS. A commission spawned by
// an earlier won close is left untouched.
func (dc *DealController) ReopenDeal(c echo.Context) error {
	user, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	if !models.IsClosedDealStatus(deal.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Only closed deals can be reopened",
		})
	}

	if err := dc.repo.Update(ctx, deal.ID, bson.M{"status": models.DealStatusInProgress}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reopen deal",
		})
	}

	description := fmt.Sprintf("Stav změněn: %s -> %s", deal.Status, models.DealStatusInProgress)
	if err := dc.repo.AppendEvent(ctx, deal.ID, models.DealEventStatusChange, description); err != nil {
		log.Printf("Failed to append deal event: %v", err)
	}

	deal.Status = models.DealStatusInProgress
	dc.notifyInvalidation(user.ID, "deals")

	return c.JSON(http.StatusOK, models.DealResponse{
		Status:  http.StatusOK,
		Message: "Deal reopened successfully",
		Data:    deal,
	})
}

// AddNote appends a note to the deal. Allowed in any state.
func (dc *DealController) AddNote(c echo.Context) error {
	user, specialistID, err := dc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.AddNoteRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if strings.TrimSpace(request.Content) == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Note content cannot be empty",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deal, errResp := dc.ownedDeal(c, ctx, specialistID)
	if deal == nil {
		return errResp
	}

	note := models.Note{
		ID:        primitive.NewObjectID(),
		Content:   utils.SanitizeInput(request.Content),
		Author:    user.FullName,
		CreatedAt: time.Now(),
	}

	if err := dc.repo.AppendNote(ctx, deal.ID, note); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add note",
		})
	}

	dc.notifyInvalidation(user.ID, "deals")

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Note added successfully",
		Data:    note,
	})
}
