package controllers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/services"
	"github.com/profiradce/profiradce_backend/utils"
	"github.com/profiradce/profiradce_backend/websocket"
)

// CommissionController handles commission listing, stats and payment
type CommissionController struct {
	db       *mongo.Client
	payments *services.PaymentService
	hub      *websocket.Hub
}

// NewCommissionController creates a new commission controller
func NewCommissionController(db *mongo.Client, payments *services.PaymentService, hub *websocket.Hub) *CommissionController {
	return &CommissionController{db: db, payments: payments, hub: hub}
}

func (cc *CommissionController) specialistFromContext(c echo.Context) (*models.User, primitive.ObjectID, error) {
	user, err := utils.GetUserFromToken(c, cc.db)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if user.UserType != "specialist" || user.SpecialistID == nil {
		return nil, primitive.NilObjectID, fmt.Errorf("not a specialist account")
	}
	return user, *user.SpecialistID, nil
}

// GetCommissions lists the specialist's commissions, newest first.
func (cc *CommissionController) GetCommissions(c echo.Context) error {
	_, specialistID, err := cc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "calculatedAt", Value: -1}})
	cursor, err := config.GetCollection(cc.db, "commissions").Find(ctx, bson.M{"specialistId": specialistID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve commissions",
		})
	}
	defer cursor.Close(ctx)

	commissions := []models.Commission{}
	if err := cursor.All(ctx, &commissions); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode commissions",
		})
	}

	return c.JSON(http.StatusOK, models.CommissionsResponse{
		Status:  http.StatusOK,
		Message: "Commissions retrieved successfully",
		Data:    commissions,
	})
}

// GetCommissionStats aggregates the specialist's commissions for the
// dashboard header.
func (cc *CommissionController) GetCommissionStats(c echo.Context) error {
	_, specialistID, err := cc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(cc.db, "commissions").Find(ctx, bson.M{"specialistId": specialistID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve commissions",
		})
	}
	defer cursor.Close(ctx)

	stats := models.CommissionStats{}
	now := time.Now()
	for cursor.Next(ctx) {
		var commission models.Commission
		if err := cursor.Decode(&commission); err != nil {
			continue
		}
		stats.Count++
		switch commission.Status {
		case models.CommissionStatusPending:
			stats.TotalPending += commission.CommissionAmount
		case models.CommissionStatusInvoiced:
			stats.TotalInvoiced += commission.CommissionAmount
		case models.CommissionStatusPaid:
			stats.TotalPaid += commission.CommissionAmount
		case models.CommissionStatusWaived:
			stats.TotalWaived += commission.CommissionAmount
		}
		if commission.IsOverdue(now) {
			stats.OverdueCount++
		}
	}

	return c.JSON(http.StatusOK, models.CommissionStatsResponse{
		Status:  http.StatusOK,
		Message: "Commission stats retrieved successfully",
		Data:    &stats,
	})
}

// PayCommission opens a payment intent for a PENDING commission and returns
// the provider client secret. The amount is bound to the intent server-side;
// the client only displays it.
func (cc *CommissionController) PayCommission(c echo.Context) error {
	_, specialistID, err := cc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	commissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var commission models.Commission
	err = config.GetCollection(cc.db, "commissions").FindOne(ctx, bson.M{
		"_id":          commissionID,
		"specialistId": specialistID,
	}).Decode(&commission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Commission not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding commission",
		})
	}

	if commission.Status != models.CommissionStatusPending {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Only pending commissions can be paid",
		})
	}

	// Amount in minor units; CZK has two decimal places
	amount := int64(math.Round(commission.CommissionAmount * 100))
	intent, err := cc.payments.CreateIntent(amount, "czk", commission.ID.Hex(), uuid.NewString())
	if err != nil {
		log.Printf("Failed to create payment intent: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Payment provider is unavailable",
		})
	}

	now := time.Now()
	record := models.PaymentRecord{
		ID:           primitive.NewObjectID(),
		CommissionID: commission.ID,
		IntentID:     intent.ID,
		Amount:       amount,
		Currency:     "czk",
		Status:       intent.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := config.GetCollection(cc.db, "payments").InsertOne(ctx, record); err != nil {
		log.Printf("Failed to store payment record: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment intent created",
		Data: models.PayCommissionResponse{
			ClientSecret: intent.ClientSecret,
			Amount:       commission.CommissionAmount,
			Currency:     "czk",
		},
	})
}

// ConfirmPayment verifies a client-confirmed intent with the provider and,
// only on a provider-reported success, settles the commission as PAID.
func (cc *CommissionController) ConfirmPayment(c echo.Context) error {
	user, specialistID, err := cc.specialistFromContext(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.ConfirmPaymentRequest
	if err := c.Bind(&request); err != nil || request.IntentID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var record models.PaymentRecord
	err = config.GetCollection(cc.db, "payments").FindOne(ctx, bson.M{"intentId": request.IntentID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Payment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding payment",
		})
	}

	// The client's word is not enough; ask the provider
	intent, err := cc.payments.GetIntent(request.IntentID)
	if err != nil {
		log.Printf("Failed to verify payment intent: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Payment provider is unavailable",
		})
	}

	now := time.Now()
	_, err = config.GetCollection(cc.db, "payments").UpdateOne(ctx, bson.M{"_id": record.ID}, bson.M{
		"$set": bson.M{"status": intent.Status, "updatedAt": now},
	})
	if err != nil {
		log.Printf("Failed to update payment record: %v", err)
	}

	if intent.Status != models.IntentStatusSucceeded {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payment has not succeeded",
			Data:    map[string]string{"intentStatus": intent.Status},
		})
	}

	result, err := config.GetCollection(cc.db, "commissions").UpdateOne(ctx, bson.M{
		"_id":          record.CommissionID,
		"specialistId": specialistID,
		"status":       models.CommissionStatusPending,
	}, bson.M{
		"$set": bson.M{"status": models.CommissionStatusPaid, "paidAt": now},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to settle commission",
		})
	}
	if result.MatchedCount == 0 {
		// Already settled or not payable; report the current state
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Commission is not pending",
		})
	}

	if cc.hub != nil {
		cc.hub.NotifyInvalidation(user.ID, "commissions", "commission-stats")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission paid successfully",
	})
}

// InvoiceCommission marks a pending commission as invoiced (admin only).
func (cc *CommissionController) InvoiceCommission(c echo.Context) error {
	return cc.adminTransition(c, models.CommissionStatusInvoiced, "invoicedAt")
}

// WaiveCommission waives a commission (admin only). WAIVED is absorbing.
func (cc *CommissionController) WaiveCommission(c echo.Context) error {
	return cc.adminTransition(c, models.CommissionStatusWaived, "")
}

func (cc *CommissionController) adminTransition(c echo.Context, target, stampField string) error {
	commissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(cc.db, "commissions")

	var commission models.Commission
	if err := collection.FindOne(ctx, bson.M{"_id": commissionID}).Decode(&commission); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Commission not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding commission",
		})
	}

	if !models.CanTransitionCommission(commission.Status, target) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Illegal transition %s -> %s", commission.Status, target),
		})
	}

	set := bson.M{"status": target}
	if stampField != "" {
		set[stampField] = time.Now()
	}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": commissionID}, bson.M{"$set": set}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update commission",
		})
	}

	// Tell the owning specialist's dashboard
	if cc.hub != nil {
		var owner models.User
		err := config.GetCollection(cc.db, "users").FindOne(ctx, bson.M{"specialistId": commission.SpecialistID}).Decode(&owner)
		if err == nil {
			cc.hub.NotifyInvalidation(owner.ID, "commissions", "commission-stats")
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission updated successfully",
	})
}
