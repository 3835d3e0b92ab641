package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/profiradce/profiradce_backend/config"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/utils"
)

const defaultDirectoryPageSize = 20

// SpecialistController serves the public directory and specialist profile
// management.
type SpecialistController struct {
	db *mongo.Client
}

// NewSpecialistController creates a new specialist controller
func NewSpecialistController(db *mongo.Client) *SpecialistController {
	return &SpecialistController{db: db}
}

// GetSpecialists lists verified specialists, filterable by profession,
// region, city and free-text search, best rated first.
func (sc *SpecialistController) GetSpecialists(c echo.Context) error {
	var filter models.SpecialistFilter
	if err := c.Bind(&filter); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid query parameters",
		})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = defaultDirectoryPageSize
	}

	query := bson.M{"isVerified": true}
	if filter.Profession != "" {
		if !models.IsValidProfession(filter.Profession) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown profession",
			})
		}
		query["profession"] = filter.Profession
	}
	if filter.Region != "" {
		query["region"] = filter.Region
	}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["$or"] = []bson.M{
			{"fullName": bson.M{"$regex": search, "$options": "i"}},
			{"bio": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(sc.db, "specialists")

	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count specialists",
		})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve specialists",
		})
	}
	defer cursor.Close(ctx)

	specialists := []models.Specialist{}
	if err := cursor.All(ctx, &specialists); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode specialists",
		})
	}

	return c.JSON(http.StatusOK, models.SpecialistsResponse{
		Status:  http.StatusOK,
		Message: "Specialists retrieved successfully",
		Data:    specialists,
		Total:   total,
		Page:    filter.Page,
	})
}

// GetSpecialist returns a single public profile. Unverified profiles are
// only visible to their owner.
func (sc *SpecialistController) GetSpecialist(c echo.Context) error {
	specialistID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid specialist ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var specialist models.Specialist
	err = config.GetCollection(sc.db, "specialists").FindOne(ctx, bson.M{"_id": specialistID}).Decode(&specialist)
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

	if !specialist.IsVerified {
		user, err := utils.GetUserFromToken(c, sc.db)
		if err != nil || user.SpecialistID == nil || *user.SpecialistID != specialist.ID {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Specialist not found",
			})
		}
	}

	return c.JSON(http.StatusOK, models.SpecialistResponse{
		Status:  http.StatusOK,
		Message: "Specialist retrieved successfully",
		Data:    &specialist,
	})
}

// UpdateMyProfile updates the authenticated specialist's own profile.
func (sc *SpecialistController) UpdateMyProfile(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, sc.db)
	if err != nil || user.SpecialistID == nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	var request models.UpdateSpecialistRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}

	set := bson.M{"updatedAt": time.Now()}
	if name := utils.SanitizeInput(request.FullName); name != "" {
		set["fullName"] = name
	}
	if request.Bio != "" {
		set["bio"] = utils.SanitizeInput(request.Bio)
	}
	if request.Region != "" {
		set["region"] = utils.SanitizeInput(request.Region)
	}
	if request.City != "" {
		set["city"] = utils.SanitizeInput(request.City)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(sc.db, "specialists").UpdateOne(ctx,
		bson.M{"_id": *user.SpecialistID}, bson.M{"$set": set})
	if err != nil || result.MatchedCount == 0 {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	if name, ok := set["fullName"]; ok {
		_, err := config.GetCollection(sc.db, "users").UpdateOne(ctx,
			bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"fullName": name, "updatedAt": time.Now()}})
		if err != nil {
			log.Printf("Failed to sync user name for %s: %v", user.ID.Hex(), err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
	})
}

// UploadProfilePhoto stores a resized profile photo and records its path.
func (sc *SpecialistController) UploadProfilePhoto(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, sc.db)
	if err != nil || user.SpecialistID == nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Specialist account required",
		})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Photo file is required",
		})
	}
	if err := utils.ValidateFileType(fileHeader.Filename, "image"); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read photo",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read photo",
		})
	}

	resized, err := utils.ResizeProfilePhoto(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unsupported image data",
		})
	}

	filename := fmt.Sprintf("%s.jpg", user.SpecialistID.Hex())
	url, err := utils.UploadFileToPath(resized, filename, "image", "profiles")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store photo",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = config.GetCollection(sc.db, "specialists").UpdateOne(ctx,
		bson.M{"_id": *user.SpecialistID},
		bson.M{"$set": bson.M{"photoPath": url, "updatedAt": time.Now()}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save photo path",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Photo uploaded successfully",
		Data:    map[string]string{"photoPath": url},
	})
}

// VerifySpecialist marks a profile as verified so it appears in the public
// directory (admin only).
func (sc *SpecialistController) VerifySpecialist(c echo.Context) error {
	specialistID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid specialist ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(sc.db, "specialists").UpdateOne(ctx,
		bson.M{"_id": specialistID},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify specialist",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Specialist not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Specialist verified successfully",
	})
}
