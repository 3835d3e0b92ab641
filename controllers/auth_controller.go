package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/profiradce/profiradce_backend/config"
	customMiddleware "github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/repositories"
	"github.com/profiradce/profiradce_backend/security"
	"github.com/profiradce/profiradce_backend/utils"
)

const refreshTokenTTL = 30 * 24 * time.Hour

// AuthController handles signup, login and session management
type AuthController struct {
	db    *mongo.Client
	redis *redis.Client
	users *repositories.UserRepository
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, redisClient *redis.Client) *AuthController {
	return &AuthController{
		db:    db,
		redis: redisClient,
		users: repositories.NewUserRepository(db),
	}
}

// Signup registers a customer or specialist account. Specialist signups also
// create the directory profile, unverified until an admin approves it.
func (ac *AuthController) Signup(c echo.Context) error {
	var request models.SignupRequest
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

	email, err := utils.SanitizeEmail(request.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	if request.UserType == "specialist" {
		if !models.IsValidProfession(request.Profession) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown profession",
			})
		}
		if strings.TrimSpace(request.Region) == "" {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Region is required for specialists",
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if existing, _ := ac.users.FindByEmail(ctx, email); existing != nil {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email is already registered",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Email:          email,
		Password:       string(hashed),
		FullName:       utils.SanitizeInput(request.FullName),
		UserType:       request.UserType,
		IsActive:       true,
		Phone:          request.Phone,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := ac.users.Insert(ctx, &user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Email is already registered",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
		})
	}

	if request.UserType == "specialist" {
		specialist := models.Specialist{
			ID:         primitive.NewObjectID(),
			UserID:     user.ID,
			FullName:   user.FullName,
			Profession: request.Profession,
			Region:     utils.SanitizeInput(request.Region),
			City:       utils.SanitizeInput(request.City),
			IsVerified: false,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := config.GetCollection(ac.db, "specialists").InsertOne(ctx, specialist); err != nil {
			log.Printf("Failed to create specialist profile for %s: %v", user.ID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create specialist profile",
			})
		}
		if err := ac.users.SetSpecialistID(ctx, user.ID, specialist.ID); err != nil {
			log.Printf("Failed to link specialist profile for %s: %v", user.ID.Hex(), err)
		}
		user.SpecialistID = &specialist.ID
	}

	return ac.issueSession(c, http.StatusCreated, &user, "Account created successfully")
}

// Login authenticates by email and password.
func (ac *AuthController) Login(c echo.Context) error {
	var request models.LoginRequest
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(request.Email))
	user, err := ac.users.FindByEmail(ctx, email)
	if err != nil {
		// Same answer for unknown email and bad password
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	return ac.issueSession(c, http.StatusOK, user, "Login successful")
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked; each token is good for one exchange.
func (ac *AuthController) Refresh(c echo.Context) error {
	var request models.RefreshRequest
	if err := c.Bind(&request); err != nil || request.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	userID, err := utils.LookupRefreshToken(ac.redis, request.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid refresh token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ac.users.FindByID(ctx, objectID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Account is no longer available",
		})
	}

	if err := utils.RevokeRefreshToken(ac.redis, request.RefreshToken); err != nil {
		log.Printf("Failed to revoke refresh token: %v", err)
	}

	return ac.issueSession(c, http.StatusOK, user, "Token refreshed")
}

// Logout blacklists the current access token and revokes the refresh token
// if one is supplied.
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(token)
		if err == nil {
			customMiddleware.BlacklistToken(token, time.Unix(claims.ExpiresAt, 0))
		}
	}

	var request models.RefreshRequest
	if err := c.Bind(&request); err == nil && request.RefreshToken != "" {
		if err := utils.RevokeRefreshToken(ac.redis, request.RefreshToken); err != nil {
			log.Printf("Failed to revoke refresh token: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// Me returns the authenticated user's profile.
func (ac *AuthController) Me(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, ac.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

func (ac *AuthController) issueSession(c echo.Context, status int, user *models.User, message string) error {
	token, _, err := customMiddleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	refreshToken := ""
	if ac.redis != nil {
		opaque, err := security.GenerateOpaqueToken()
		if err == nil {
			if err := utils.StoreRefreshToken(ac.redis, opaque, user.ID.Hex(), refreshTokenTTL); err == nil {
				refreshToken = opaque
			} else {
				log.Printf("Failed to store refresh token: %v", err)
			}
		}
	}

	user.Password = ""
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data: models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}
