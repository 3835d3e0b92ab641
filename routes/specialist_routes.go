package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
)

// RegisterSpecialistRoutes sets up the public directory and profile
// management routes.
func RegisterSpecialistRoutes(e *echo.Echo, specialistController *controllers.SpecialistController) {
	// Public directory
	e.GET("/api/specialists", specialistController.GetSpecialists)
	e.GET("/api/specialists/:id", specialistController.GetSpecialist)

	// Own profile management
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("specialist"))
	r.PUT("/specialists/me", specialistController.UpdateMyProfile)
	r.POST("/specialists/me/photo", specialistController.UploadProfilePhoto)

	// Admin verification
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))
	admin.POST("/specialists/:id/verify", specialistController.VerifySpecialist)
}
