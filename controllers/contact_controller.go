package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/profiradce/profiradce_backend/config"
	customMiddleware "github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/security"
	"github.com/profiradce/profiradce_backend/services"
	"github.com/profiradce/profiradce_backend/utils"
)

// ContactController handles the public contact form. The limiter and mailer
// are injected so tests can control them; db may be nil, in which case
// submissions are not persisted.
type ContactController struct {
	db      *mongo.Client
	limiter *customMiddleware.SlidingWindow
	mailer  *services.MailService
}

// NewContactController creates a new contact controller.
func NewContactController(db *mongo.Client, limiter *customMiddleware.SlidingWindow, mailer *services.MailService) *ContactController {
	return &ContactController{db: db, limiter: limiter, mailer: mailer}
}

// SubmitContact validates the form, applies the per-IP rate limit and
// forwards the message to the inbox. Validation runs before the limiter so
// a malformed request does not burn one of the caller's slots.
func (cc *ContactController) SubmitContact(c echo.Context) error {
	if !security.ValidateContentType(c.Request().Header.Get(echo.HeaderContentType)) {
		return c.JSON(http.StatusBadRequest, models.ContactResponse{
			Success: false,
			Error:   models.MsgContactServerError,
		})
	}

	var request models.ContactRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.ContactResponse{
			Success: false,
			Error:   models.MsgContactServerError,
		})
	}

	if msg := request.Validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, models.ContactResponse{
			Success: false,
			Error:   msg,
		})
	}

	ip := c.RealIP()
	if !cc.limiter.Allow(ip) {
		return c.JSON(http.StatusTooManyRequests, models.ContactResponse{
			Success: false,
			Error:   models.MsgContactRateLimited,
		})
	}

	phone, err := utils.SanitizePhone(request.Phone)
	if err != nil {
		phone = ""
	}
	submission := models.ContactSubmission{
		Name:      strings.TrimSpace(request.Name),
		Email:     strings.TrimSpace(request.Email),
		Phone:     phone,
		Subject:   strings.TrimSpace(request.Subject),
		Message:   strings.TrimSpace(request.Message),
		SourceIP:  ip,
		CreatedAt: time.Now(),
	}

	if cc.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := config.GetCollection(cc.db, "contactSubmissions").InsertOne(ctx, submission); err != nil {
			log.Printf("Failed to store contact submission: %v", err)
		}
	}

	// Delivery is best effort; the sender already got their confirmation
	if cc.mailer != nil {
		go func(s models.ContactSubmission) {
			if err := cc.mailer.SendContactNotification(s.Name, s.Email, s.Phone, s.Subject, s.Message); err != nil {
				log.Printf("Failed to send contact notification: %v", err)
			}
		}(submission)
	}

	return c.JSON(http.StatusOK, models.ContactResponse{Success: true})
}
