package controllers

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/utils"
)

// EventController handles community events and RSVPs
type EventController struct {
	db *mongo.Client
}

// NewEventController creates a new event controller
func NewEventController(db *mongo.Client) *EventController {
	return &EventController{db: db}
}

// GetEvents lists upcoming events, soonest first.
func (ec *EventController) GetEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})
	cursor, err := config.GetCollection(ec.db, "events").Find(ctx, bson.M{
		"startsAt": bson.M{"$gte": time.Now()},
	}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve events",
		})
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode events",
		})
	}

	return c.JSON(http.StatusOK, models.EventsResponse{
		Status:  http.StatusOK,
		Message: "Events retrieved successfully",
		Data:    events,
	})
}

// GetEvent returns a single event.
func (ec *EventController) GetEvent(c echo.Context) error {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid event ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var event models.Event
	err = config.GetCollection(ec.db, "events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Event not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding event",
		})
	}

	return c.JSON(http.StatusOK, models.EventResponse{
		Status:  http.StatusOK,
		Message: "Event retrieved successfully",
		Data:    &event,
	})
}

// CreateEvent adds a new event (admin only).
func (ec *EventController) CreateEvent(c echo.Context) error {
	var request models.CreateEventRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	if request.StartsAt.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Event start must be in the future",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	event := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       utils.SanitizeInput(request.Title),
		Description: utils.SanitizeInput(request.Description),
		Venue:       utils.SanitizeInput(request.Venue),
		City:        utils.SanitizeInput(request.City),
		StartsAt:    request.StartsAt,
		Capacity:    request.Capacity,
		GoingCount:  0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := config.GetCollection(ec.db, "events").InsertOne(ctx, event); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create event",
		})
	}

	return c.JSON(http.StatusCreated, models.EventResponse{
		Status:  http.StatusCreated,
		Message: "Event created successfully",
		Data:    &event,
	})
}

// RSVPToEvent reserves a spot. The capacity check and counter bump are a
// single conditional update so concurrent RSVPs cannot oversell the room.
func (ec *EventController) RSVPToEvent(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid event ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rsvps := config.GetCollection(ec.db, "rsvps")

	var existing models.RSVP
	err = rsvps.FindOne(ctx, bson.M{"eventId": eventID, "userId": userID}).Decode(&existing)
	if err == nil && existing.Status == models.RSVPStatusGoing {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "You are already registered for this event",
		})
	}

	now := time.Now()
	result, err := config.GetCollection(ec.db, "events").UpdateOne(ctx, bson.M{
		"_id":      eventID,
		"startsAt": bson.M{"$gte": now},
		"$expr":    bson.M{"$lt": bson.A{"$goingCount", "$capacity"}},
	}, bson.M{
		"$inc": bson.M{"goingCount": 1},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to register",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Event is full or already over",
		})
	}

	rsvp := models.RSVP{
		EventID:   eventID,
		UserID:    userID,
		Status:    models.RSVPStatusGoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing.ID.IsZero() {
		rsvp.ID = primitive.NewObjectID()
		_, err = rsvps.InsertOne(ctx, rsvp)
	} else {
		rsvp.ID = existing.ID
		_, err = rsvps.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{
			"$set": bson.M{"status": models.RSVPStatusGoing, "updatedAt": now},
		})
	}
	if err != nil {
		// Undo the seat we just took
		_, _ = config.GetCollection(ec.db, "events").UpdateOne(ctx,
			bson.M{"_id": eventID}, bson.M{"$inc": bson.M{"goingCount": -1}})
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to register",
		})
	}

	return c.JSON(http.StatusCreated, models.RSVPResponse{
		Status:  http.StatusCreated,
		Message: "Registered successfully",
		Data:    &rsvp,
	})
}

// CancelRSVP frees the user's spot.
func (ec *EventController) CancelRSVP(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid event ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(ec.db, "rsvps").UpdateOne(ctx, bson.M{
		"eventId": eventID,
		"userId":  userID,
		"status":  models.RSVPStatusGoing,
	}, bson.M{
		"$set": bson.M{"status": models.RSVPStatusCancelled, "updatedAt": time.Now()},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to cancel registration",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No active registration found",
		})
	}

	_, err = config.GetCollection(ec.db, "events").UpdateOne(ctx,
		bson.M{"_id": eventID, "goingCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"goingCount": -1}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to release spot",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration cancelled",
	})
}

// GetTicket renders the user's RSVP as a QR ticket PNG, scanned at the door.
func (ec *EventController) GetTicket(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid event ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var rsvp models.RSVP
	err = config.GetCollection(ec.db, "rsvps").FindOne(ctx, bson.M{
		"eventId": eventID,
		"userId":  userID,
		"status":  models.RSVPStatusGoing,
	}).Decode(&rsvp)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No active registration found",
		})
	}

	payload := fmt.Sprintf("profiradce:ticket:%s:%s", eventID.Hex(), rsvp.ID.Hex())
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate ticket",
		})
	}
	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate ticket",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode ticket",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
