package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course model for the academy. Modules and lessons are embedded; lesson
// order within a module follows slice order.
type Course struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Profession  string             `json:"profession,omitempty" bson:"profession,omitempty"`
	Modules     []CourseModule     `json:"modules,omitempty" bson:"modules,omitempty"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CourseModule groups lessons within a course.
type CourseModule struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title   string             `json:"title" bson:"title"`
	Lessons []Lesson           `json:"lessons,omitempty" bson:"lessons,omitempty"`
}

// Lesson is a single video lesson.
type Lesson struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	VideoURL        string             `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	ThumbnailURL    string             `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	DurationSeconds int                `json:"durationSeconds,omitempty" bson:"durationSeconds,omitempty"`
}

// Enrollment tracks a user's progress through a course. CompletedLessons is
// append-only; ProgressPercent is recomputed server-side on every completion.
type Enrollment struct {
	ID               primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	CourseID         primitive.ObjectID   `json:"courseId" bson:"courseId"`
	UserID           primitive.ObjectID   `json:"userId" bson:"userId"`
	CompletedLessons []primitive.ObjectID `json:"completedLessons,omitempty" bson:"completedLessons,omitempty"`
	ProgressPercent  float64              `json:"progressPercent" bson:"progressPercent"`
	EnrolledAt       time.Time            `json:"enrolledAt" bson:"enrolledAt"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// LessonCount returns the total number of lessons across all modules.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// CourseResponse model
type CourseResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    *Course `json:"data,omitempty"`
}

// CoursesResponse model for multiple courses
type CoursesResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    []Course `json:"data,omitempty"`
}

// EnrollmentResponse model
type EnrollmentResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    *Enrollment `json:"data,omitempty"`
}
