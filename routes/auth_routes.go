package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
)

// RegisterAuthRoutes sets up authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh", authController.Refresh)
	auth.POST("/logout", authController.Logout)

	me := e.Group("/api/auth")
	me.Use(middleware.JWTMiddleware())
	me.GET("/me", authController.Me)
}
