// utils/auth.go
package utils

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/profiradce/profiradce_backend/config"
	customMiddleware "github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/models"
)

// ParseToken parses and validates a JWT token string.
func ParseToken(tokenString string) (*customMiddleware.JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &customMiddleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(customMiddleware.GetJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(*customMiddleware.JwtCustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GetUserFromToken loads the full user document for the authenticated
// request.
func GetUserFromToken(c echo.Context, db *mongo.Client) (*models.User, error) {
	claims := customMiddleware.GetUserFromToken(c)
	if claims == nil {
		return nil, errors.New("no token claims in context")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, errors.New("invalid user ID in token")
	}

	var user models.User
	err = config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserIDFromToken returns the authenticated user's ObjectID.
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	claims := customMiddleware.GetUserFromToken(c)
	if claims == nil {
		if userID, ok := c.Get("userId").(string); ok && userID != "" {
			return primitive.ObjectIDFromHex(userID)
		}
		return primitive.NilObjectID, errors.New("no token claims in context")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
