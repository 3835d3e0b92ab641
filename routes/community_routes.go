package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
)

// RegisterCommunityRoutes sets up event and academy routes.
func RegisterCommunityRoutes(e *echo.Echo, eventController *controllers.EventController, courseController *controllers.CourseController) {
	// Public catalog
	e.GET("/api/events", eventController.GetEvents)
	e.GET("/api/events/:id", eventController.GetEvent)
	e.GET("/api/courses", courseController.GetCourses)
	e.GET("/api/courses/:id", courseController.GetCourse)

	// Authenticated participation
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.POST("/events/:id/rsvp", eventController.RSVPToEvent)
	r.DELETE("/events/:id/rsvp", eventController.CancelRSVP)
	r.GET("/events/:id/ticket", eventController.GetTicket)
	r.POST("/courses/:id/enroll", courseController.Enroll)
	r.GET("/enrollments", courseController.GetMyEnrollments)
	r.POST("/courses/:id/lessons/:lessonId/complete", courseController.CompleteLesson)

	// Admin content management
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))
	admin.POST("/events", eventController.CreateEvent)
	admin.POST("/courses/:id/lessons/:lessonId/video", courseController.UploadLessonVideo)
}
