package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
	"github.com/profiradce/profiradce_backend/models"
	"github.com/profiradce/profiradce_backend/utils"
	"github.com/profiradce/profiradce_backend/websocket"
)

// Controllers groups everything SetupRoutes wires up.
type Controllers struct {
	Auth       *controllers.AuthController
	Deal       *controllers.DealController
	Commission *controllers.CommissionController
	Contact    *controllers.ContactController
	Specialist *controllers.SpecialistController
	Event      *controllers.EventController
	Course     *controllers.CourseController
}

// SetupRoutes configures all API routes by calling individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub, c Controllers) {
	RegisterAuthRoutes(e, c.Auth)
	RegisterDealRoutes(e, c.Deal, c.Commission)
	RegisterSpecialistRoutes(e, c.Specialist)
	RegisterCommunityRoutes(e, c.Event, c.Course)

	// Public contact form; rate limiting happens inside the controller
	e.POST("/api/contact", c.Contact.SubmitContact)

	// Uploaded files
	e.GET("/uploads/*", echo.WrapHandler(http.HandlerFunc(utils.ServeFiles)))

	// Dashboard invalidation stream
	ws := e.Group("/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(ctx echo.Context) error {
		userID, err := utils.GetUserIDFromToken(ctx)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		}
		return websocket.HandleWebSocket(ctx, hub, userID)
	})

	// Health check
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
