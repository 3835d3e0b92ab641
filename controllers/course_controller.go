package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"path/filepath"
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

// CourseController handles the academy: course catalog, enrollments and
// lesson progress.
type CourseController struct {
	db *mongo.Client
}

// NewCourseController creates a new course controller
func NewCourseController(db *mongo.Client) *CourseController {
	return &CourseController{db: db}
}

// GetCourses lists published courses, optionally filtered by profession.
func (cc *CourseController) GetCourses(c echo.Context) error {
	query := bson.M{"isPublished": true}
	if profession := c.QueryParam("profession"); profession != "" {
		query["profession"] = profession
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(cc.db, "courses").Find(ctx, query, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve courses",
		})
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode courses",
		})
	}

	return c.JSON(http.StatusOK, models.CoursesResponse{
		Status:  http.StatusOK,
		Message: "Courses retrieved successfully",
		Data:    courses,
	})
}

// GetCourse returns a published course with its full module tree.
func (cc *CourseController) GetCourse(c echo.Context) error {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid course ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var course models.Course
	err = config.GetCollection(cc.db, "courses").FindOne(ctx, bson.M{
		"_id":         courseID,
		"isPublished": true,
	}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Course not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error finding course",
		})
	}

	return c.JSON(http.StatusOK, models.CourseResponse{
		Status:  http.StatusOK,
		Message: "Course retrieved successfully",
		Data:    &course,
	})
}

// Enroll creates an enrollment for the authenticated user. Enrolling twice
// returns the existing enrollment.
func (cc *CourseController) Enroll(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid course ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := config.GetCollection(cc.db, "courses").CountDocuments(ctx, bson.M{
		"_id":         courseID,
		"isPublished": true,
	})
	if err != nil || count == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Course not found",
		})
	}

	enrollments := config.GetCollection(cc.db, "enrollments")

	now := time.Now()
	enrollment := models.Enrollment{
		ID:         primitive.NewObjectID(),
		CourseID:   courseID,
		UserID:     userID,
		EnrolledAt: now,
		UpdatedAt:  now,
	}
	if _, err := enrollments.InsertOne(ctx, enrollment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var existing models.Enrollment
			if err := enrollments.FindOne(ctx, bson.M{"courseId": courseID, "userId": userID}).Decode(&existing); err == nil {
				return c.JSON(http.StatusOK, models.EnrollmentResponse{
					Status:  http.StatusOK,
					Message: "Already enrolled",
					Data:    &existing,
				})
			}
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to enroll",
		})
	}

	return c.JSON(http.StatusCreated, models.EnrollmentResponse{
		Status:  http.StatusCreated,
		Message: "Enrolled successfully",
		Data:    &enrollment,
	})
}

// GetMyEnrollments lists the authenticated user's enrollments.
func (cc *CourseController) GetMyEnrollments(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(cc.db, "enrollments").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve enrollments",
		})
	}
	defer cursor.Close(ctx)

	enrollments := []models.Enrollment{}
	if err := cursor.All(ctx, &enrollments); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode enrollments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Enrollments retrieved successfully",
		Data:    enrollments,
	})
}

// CompleteLesson marks a lesson done and recomputes the enrollment's
// progress. Completing the same lesson again is a no-op.
func (cc *CourseController) CompleteLesson(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid course ID",
		})
	}
	lessonID, err := primitive.ObjectIDFromHex(c.Param("lessonId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lesson ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var course models.Course
	err = config.GetCollection(cc.db, "courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Course not found",
		})
	}

	found := false
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				found = true
				break
			}
		}
	}
	if !found {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Lesson not found in this course",
		})
	}

	enrollments := config.GetCollection(cc.db, "enrollments")

	result, err := enrollments.UpdateOne(ctx, bson.M{
		"courseId": courseID,
		"userId":   userID,
	}, bson.M{
		"$addToSet": bson.M{"completedLessons": lessonID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record progress",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Enroll in the course first",
		})
	}

	var enrollment models.Enrollment
	if err := enrollments.FindOne(ctx, bson.M{"courseId": courseID, "userId": userID}).Decode(&enrollment); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load enrollment",
		})
	}

	progress := 0.0
	if total := course.LessonCount(); total > 0 {
		progress = math.Round(float64(len(enrollment.CompletedLessons))/float64(total)*10000) / 100
	}
	enrollment.ProgressPercent = progress
	if _, err := enrollments.UpdateOne(ctx, bson.M{"_id": enrollment.ID}, bson.M{
		"$set": bson.M{"progressPercent": progress},
	}); err != nil {
		log.Printf("Failed to store progress for enrollment %s: %v", enrollment.ID.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.EnrollmentResponse{
		Status:  http.StatusOK,
		Message: "Progress updated",
		Data:    &enrollment,
	})
}

// UploadLessonVideo stores a lesson video, generates its thumbnail and
// attaches both to the embedded lesson (admin only).
func (cc *CourseController) UploadLessonVideo(c echo.Context) error {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid course ID",
		})
	}
	lessonID, err := primitive.ObjectIDFromHex(c.Param("lessonId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lesson ID",
		})
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Video file is required",
		})
	}
	if err := utils.ValidateFileType(fileHeader.Filename, "video"); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read video",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read video",
		})
	}

	filename := fmt.Sprintf("%s%s", lessonID.Hex(), filepath.Ext(fileHeader.Filename))
	videoURL, err := utils.UploadFileToPath(data, filename, "video", "lessons")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store video",
		})
	}

	thumbnailURL, err := utils.GenerateVideoThumbnail(videoURL)
	if err != nil {
		log.Printf("Failed to generate thumbnail for lesson %s: %v", lessonID.Hex(), err)
		thumbnailURL = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(cc.db, "courses").UpdateOne(ctx, bson.M{
		"_id": courseID,
	}, bson.M{
		"$set": bson.M{
			"modules.$[].lessons.$[lesson].videoUrl":     videoURL,
			"modules.$[].lessons.$[lesson].thumbnailUrl": thumbnailURL,
			"updatedAt": time.Now(),
		},
	}, options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"lesson._id": lessonID}},
	}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to attach video",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Course not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Video uploaded successfully",
		Data: map[string]string{
			"videoUrl":     videoURL,
			"thumbnailUrl": thumbnailURL,
		},
	})
}
